package httpx

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-wedding-orders/internal/backend"
	"github.com/ariefcatur/go-wedding-orders/internal/feedback"
	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

const (
	headerUserID   = "X-User-Id"
	headerUserRole = "X-User-Role"
)

type viewerKey struct{}

// Identity forwards the caller's bearer token to the backend and records who is asking. The
// user id and role headers are set by the auth gateway in front of this service.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && tok != "" {
			ctx = backend.WithToken(ctx, tok)
		}
		var v orders.Viewer
		if id, err := strconv.ParseInt(r.Header.Get(headerUserID), 10, 64); err == nil && id > 0 {
			v.UserID = id
		}
		v.Admin = strings.EqualFold(r.Header.Get(headerUserRole), "admin")
		ctx = context.WithValue(ctx, viewerKey{}, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func viewerFrom(ctx context.Context) orders.Viewer {
	v, _ := ctx.Value(viewerKey{}).(orders.Viewer)
	return v
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !viewerFrom(r.Context()).Admin {
			writeError(w, r, feedback.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
