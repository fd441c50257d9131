package storefront

import (
	"net/http"
	"time"

	mw "storefront/internal/adapters/in/http/middleware"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// openSession creates a session, or reattaches the one named by the
// X-Session-Id header.
func (a *API) openSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.sessions.Open(r.Context(), mw.SessionID(r))
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.Header().Set(mw.SessionHeader, s.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{ID: s.ID, CreatedAt: s.CreatedAt})
}

func (a *API) currentSession(w http.ResponseWriter, r *http.Request) {
	s := current(r)
	writeJSON(w, http.StatusOK, sessionResponse{ID: s.ID, CreatedAt: s.CreatedAt})
}

func (a *API) endSession(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.End(current(r).ID); err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
