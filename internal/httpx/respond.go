package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError never leaks internals: the body is always a feedback.Problem.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	p := feedback.Classify(err)
	lg := zerolog.Ctx(r.Context())
	if p.Kind == feedback.KindTransport {
		lg.Error().Err(err).Str("component", "httpx").Msg("")
	} else {
		lg.Debug().Err(err).Str("kind", string(p.Kind)).Msg("request rejected")
	}
	writeJSON(w, p.Status, p)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return feedback.Field("body", "Format data tidak valid.")
	}
	return nil
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, feedback.Field(name, "ID tidak valid.")
	}
	return id, nil
}

func withTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}
