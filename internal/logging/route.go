package logging

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern keeps metric labels bounded: /orders/{id} instead of /orders/42.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
