package web

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/stamps/internal/core"
)

// requestMetadata copies the request id and client IP into the context so
// that service-level logs can be correlated with request logs.
func requestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithRequestID(r.Context(), chimw.GetReqID(r.Context()))
		ctx = core.ContextWithClientIP(ctx, clientIP(r.RemoteAddr))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
