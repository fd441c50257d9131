package storefront

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
)

type addressCreated struct {
	ID string `json:"id"`
}

func (a *API) listAddresses(w http.ResponseWriter, r *http.Request) {
	auth := current(r).Auth
	if auth.State().User == nil {
		a.writeErr(w, r, &usecase.AuthRequiredError{Op: "list addresses"})
		return
	}
	writeJSON(w, http.StatusOK, auth.Addresses())
}

func (a *API) addAddress(w http.ResponseWriter, r *http.Request) {
	var in addressdom.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	id, err := current(r).Auth.AddAddress(r.Context(), in)
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, addressCreated{ID: id})
}

func (a *API) updateAddress(w http.ResponseWriter, r *http.Request) {
	var in addressdom.Input
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := current(r).Auth.UpdateAddress(r.Context(), chi.URLParam(r, "id"), in); err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) deleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := current(r).Auth.DeleteAddress(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
