package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the listed origins. With none configured, any request origin
// is reflected back with credentials allowed.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(r *http.Request, origin string) bool { return true }
	} else {
		opts.AllowedOrigins = allowedOrigins
	}
	return cors.Handler(opts)
}
