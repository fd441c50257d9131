package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/application/session"
)

// SessionLookup finds a live session by id.
type SessionLookup interface {
	Get(id string) (*session.Session, error)
}

type ctxKeySession struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, s)
}

// SessionFrom returns the session attached by RequireSession.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(ctxKeySession{}).(*session.Session)
	return s, ok && s != nil
}

// SessionID reads the id from the X-Session-Id header, falling back to the
// "session" query parameter for websocket clients that cannot set headers.
func SessionID(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(SessionHeader)); v != "" {
		return v
	}
	return strings.TrimSpace(r.URL.Query().Get("session"))
}

// RequireSession rejects requests without a live session.
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r)
			if id == "" {
				writeError(w, http.StatusUnauthorized, "session_required")
				return
			}
			s, err := sessions.Get(id)
			if err != nil {
				if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrInvalidID) {
					writeError(w, http.StatusUnauthorized, "session_not_found")
					return
				}
				writeError(w, http.StatusInternalServerError, "session_lookup_failed")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
