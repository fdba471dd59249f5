package server

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/SLASHOO/SkyMotion-Library/internal/auth"
)

// securityHeaders sets the response headers for a JSON API that is never
// framed or rendered.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none';")
		next.ServeHTTP(w, r)
	})
}

// corsHandler lets the widget call the API from the site pages. With no
// origins configured every origin is allowed.
func corsHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.MemberHeader},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	})
}
