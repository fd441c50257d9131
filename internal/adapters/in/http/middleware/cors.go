package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// SessionHeader carries the session id on every API request.
const SessionHeader = "X-Session-Id"

// CORS allows the configured origins; "*" allows any.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		ExposedHeaders:   []string{SessionHeader, "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           600,
	})
}
