package storefront

import (
	"net/http"

	userdom "storefront/internal/domain/user"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type resumeRequest struct {
	IDToken string `json:"idToken"`
}

func (a *API) authState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Auth.State())
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	auth := current(r).Auth
	if err := auth.Login(r.Context(), trimmed(req.Email), req.Password); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth.State())
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	auth := current(r).Auth
	if err := auth.Signup(r.Context(), trimmed(req.Email), req.Password, trimmed(req.Name)); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, auth.State())
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	auth := current(r).Auth
	if err := auth.Logout(r.Context()); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth.State())
}

// resume signs the session in with an ID token issued earlier.
func (a *API) resume(w http.ResponseWriter, r *http.Request) {
	var req resumeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if trimmed(req.IDToken) == "" {
		a.writeErr(w, r, userdom.ErrInvalidToken)
		return
	}
	auth := current(r).Auth
	if err := auth.Resume(r.Context(), trimmed(req.IDToken)); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auth.State())
}
