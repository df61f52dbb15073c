package web

import (
	"net/http"

	"github.com/JonMunkholm/datalens/internal/core"
)

// withRequestMetadata stores the resolved client IP on the request context
// so service logs can carry it.
func withRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
