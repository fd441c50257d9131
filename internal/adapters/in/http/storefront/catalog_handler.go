package storefront

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// listProducts returns the catalog, optionally filtered by ?category=.
func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	if c := strings.TrimSpace(r.URL.Query().Get("category")); c != "" {
		writeJSON(w, http.StatusOK, a.catalog.ByCategory(c))
		return
	}
	writeJSON(w, http.StatusOK, a.catalog.All())
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.catalog.ByID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog.Categories())
}
