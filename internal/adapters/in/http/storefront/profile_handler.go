package storefront

import (
	"io"
	"net/http"
	"strings"

	userdom "storefront/internal/domain/user"
)

type createProfileRequest struct {
	UID string `json:"uid"`
	userdom.Patch
}

type pictureResponse struct {
	URL string `json:"url"`
}

// getProfile returns the mirrored profile state. The document itself only
// changes through the live watch, so a write may not be visible yet.
func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	st := current(r).Auth.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  st.ProfileStatus,
		"profile": st.Profile,
	})
}

func (a *API) patchProfile(w http.ResponseWriter, r *http.Request) {
	var patch userdom.Patch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := current(r).Auth.UpdateUserProfile(r.Context(), patch); err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// createProfile writes the initial profile document. uid defaults to the
// signed-in user.
func (a *API) createProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	auth := current(r).Auth
	uid := trimmed(req.UID)
	if uid == "" {
		if u := auth.State().User; u != nil {
			uid = u.UID
		}
	}
	if err := auth.CreateUserProfile(r.Context(), uid, req.Patch); err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// putProfilePicture takes the raw image as the request body.
func (a *API) putProfilePicture(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, int64(userdom.MaxPictureBytes)+1))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid_body")
		return
	}
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	url, err := current(r).Auth.UpdateProfilePicture(r.Context(), trimmed(ct), data)
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pictureResponse{URL: url})
}
