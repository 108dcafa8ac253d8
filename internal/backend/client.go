// Package backend is the typed client for the booking backend. The backend owns persistence,
// authorization and every state transition; this client only ships requests and maps failures.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[rawResponse]
}

type rawResponse struct {
	status int
	body   []byte
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		cb: newBreaker("booking-backend"),
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker[rawResponse] {
	var st gobreaker.Settings
	st.Name = name
	st.Timeout = 15 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("component", "backend").Str("breaker", name).
			Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
	}
	return gobreaker.NewCircuitBreaker[rawResponse](st)
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token; every backend call made with the returned
// context is authorized as that user.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

// ValidationError is the backend's 422 body: a message plus per-field messages.
type ValidationError struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors"`
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "backend validation: " + e.Message
	}
	return "backend validation failed"
}

func (e *ValidationError) FieldErrors() map[string][]string { return e.Fields }

// TransportError covers network failures, 5xx answers and an open breaker.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("backend %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is any other non-2xx answer.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Code, e.Message)
}

type request struct {
	op          string // metric / log label, not the URL
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, request{op: op, method: method, path: path, body: body, contentType: "application/json"}, out)
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	return c.do(ctx, request{op: op, method: http.MethodGet, path: path, query: query}, out)
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" && r.body != nil {
		req.Header.Set("Content-Type", r.contentType)
	}
	if tok := TokenFrom(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	res, err := c.cb.Execute(func() (rawResponse, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return rawResponse{}, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return rawResponse{status: resp.StatusCode}, fmt.Errorf("failed to read response body: %w", err)
		}
		raw := rawResponse{status: resp.StatusCode, body: body}
		if resp.StatusCode >= 500 {
			return raw, fmt.Errorf("status %d", resp.StatusCode)
		}
		return raw, nil
	})
	metrics.BackendRequests.WithLabelValues(r.op, strconv.Itoa(res.status)).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "backend").Str("op", r.op).Msg("")
		return &TransportError{Op: r.op, Err: err}
	}

	switch {
	case res.status >= 200 && res.status < 300:
		if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
			return nil
		}
		if err := json.Unmarshal(res.body, out); err != nil {
			return &TransportError{Op: r.op, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	case res.status == http.StatusUnprocessableEntity:
		ve := &ValidationError{}
		if err := json.Unmarshal(res.body, ve); err != nil {
			ve.Message = string(res.body)
		}
		return ve
	case res.status == http.StatusNotFound:
		return fmt.Errorf("backend %s: %w", r.op, feedback.ErrNotFound)
	case res.status == http.StatusUnauthorized:
		return fmt.Errorf("backend %s: %w", r.op, feedback.ErrUnauthorized)
	case res.status == http.StatusForbidden:
		return fmt.Errorf("backend %s: %w", r.op, feedback.ErrForbidden)
	case res.status == http.StatusConflict:
		msg := errorMessage(res.body)
		return &feedback.Conflict{Message: msg, Err: &StatusError{Op: r.op, Code: res.status, Message: msg}}
	}

	return &StatusError{Op: r.op, Code: res.status, Message: errorMessage(res.body)}
}

func errorMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err == nil {
		if m.Message != "" {
			return m.Message
		}
		if m.Error != "" {
			return m.Error
		}
	}
	return string(body)
}

// IsConflict reports a 409 from the backend, e.g. a date booked by someone else in the meantime.
func IsConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusConflict
}

type envelope[T any] struct {
	Data T `json:"data"`
}
