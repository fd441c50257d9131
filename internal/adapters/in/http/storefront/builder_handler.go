package storefront

import (
	"net/http"

	"storefront/internal/application/usecase"
)

type toggleBuilderRequest struct {
	ProductID string `json:"productId"`
}

type confirmResponse struct {
	Added int                  `json:"added"`
	Cart  usecase.CartSnapshot `json:"cart"`
}

func (a *API) getBuilder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Builder.View())
}

func (a *API) toggleBuilder(w http.ResponseWriter, r *http.Request) {
	var req toggleBuilderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := current(r).Builder.Toggle(r.Context(), trimmed(req.ProductID))
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// confirmBuilder moves the selected parts into the cart. The selection is
// kept.
func (a *API) confirmBuilder(w http.ResponseWriter, r *http.Request) {
	s := current(r)
	n, err := s.Builder.Confirm()
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, confirmResponse{Added: n, Cart: s.Cart.Snapshot()})
}

func (a *API) resetBuilder(w http.ResponseWriter, r *http.Request) {
	s := current(r)
	if err := s.Builder.Reset(r.Context()); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Builder.View())
}
