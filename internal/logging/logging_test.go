package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCarriesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(buf, "wedding-web", "debug")

	r := chi.NewRouter()
	r.Use(middleware.RequestID, Logger)
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	assert.NotEmpty(t, inner["request_id"])
	assert.Equal(t, inner["request_id"], access["request_id"])
	assert.Equal(t, "/orders/{id}", access["route"])
	assert.Equal(t, float64(http.StatusTeapot), access["status"])
	assert.Equal(t, "wedding-web", access["service"])
}

func TestSetupUnknownLevel(t *testing.T) {
	Setup(&bytes.Buffer{}, "x", "loud")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
