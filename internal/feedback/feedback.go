// Package feedback turns every failure of a booking screen into something the user can act on.
// Nothing here is fatal: the caller always gets a Problem back and keeps its form state.
package feedback

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation       Kind = "validation"        // blocked before any request
	KindServerValidation Kind = "server_validation" // 422 from the backend
	KindTransport        Kind = "transport"         // network, 5xx, open breaker
	KindConflict         Kind = "conflict"          // date taken, amount above remaining, ...
	KindNotFound         Kind = "not_found"
	KindUnauthorized     Kind = "unauthorized"
	KindForbidden        Kind = "forbidden"
)

const (
	MsgGeneric      = "Terjadi kesalahan, silakan coba lagi."
	MsgValidation   = "Periksa kembali isian formulir."
	MsgNotFound     = "Data tidak ditemukan."
	MsgUnauthorized = "Sesi Anda telah berakhir, silakan masuk kembali."
	MsgForbidden    = "Anda tidak memiliki akses untuk tindakan ini."
)

// Invalid is a client-side validation failure, keyed by form field.
type Invalid struct {
	Fields map[string]string
}

func Field(field, msg string) *Invalid {
	return &Invalid{Fields: map[string]string{field: msg}}
}

func (e *Invalid) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil keeps `return v.OrNil()` from producing a typed-nil error.
func (e *Invalid) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *Invalid) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Conflict is a business-rule rejection: the user must change an input, retrying won't help.
type Conflict struct {
	Field   string
	Message string
	Err     error
}

func (e *Conflict) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Conflict) Unwrap() error { return e.Err }

// ServerFields is satisfied by the backend client's 422 error.
type ServerFields interface {
	error
	FieldErrors() map[string][]string
}

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type Problem struct {
	Kind    Kind                `json:"kind"`
	Status  int                 `json:"-"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors,omitempty"`
}

func Classify(err error) Problem {
	var inv *Invalid
	if errors.As(err, &inv) {
		fields := make(map[string][]string, len(inv.Fields))
		for k, v := range inv.Fields {
			fields[k] = []string{v}
		}
		return Problem{Kind: KindValidation, Status: http.StatusBadRequest, Message: MsgValidation, Fields: fields}
	}

	var cf *Conflict
	if errors.As(err, &cf) {
		p := Problem{Kind: KindConflict, Status: http.StatusConflict, Message: cf.Message}
		if cf.Field != "" {
			p.Fields = map[string][]string{cf.Field: {cf.Message}}
		}
		return p
	}

	var sf ServerFields
	if errors.As(err, &sf) {
		return Problem{Kind: KindServerValidation, Status: http.StatusUnprocessableEntity, Message: MsgValidation, Fields: sf.FieldErrors()}
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return Problem{Kind: KindNotFound, Status: http.StatusNotFound, Message: MsgNotFound}
	case errors.Is(err, ErrUnauthorized):
		return Problem{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: MsgUnauthorized}
	case errors.Is(err, ErrForbidden):
		return Problem{Kind: KindForbidden, Status: http.StatusForbidden, Message: MsgForbidden}
	}

	return Problem{Kind: KindTransport, Status: http.StatusBadGateway, Message: MsgGeneric}
}
