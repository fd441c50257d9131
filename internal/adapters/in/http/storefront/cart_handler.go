package storefront

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	productdom "storefront/internal/domain/product"
)

type addItemsRequest struct {
	ProductID  string   `json:"productId"`
	ProductIDs []string `json:"productIds"`
}

type toggleResponse struct {
	ProductID string `json:"productId"`
	Selected  bool   `json:"selected"`
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Cart.Snapshot())
}

// addCartItems adds catalog products by id. Each id adds one unit.
func (a *API) addCartItems(w http.ResponseWriter, r *http.Request) {
	var req addItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ids := req.ProductIDs
	if id := trimmed(req.ProductID); id != "" {
		ids = append([]string{id}, ids...)
	}
	if len(ids) == 0 {
		writeMessage(w, http.StatusBadRequest, "product_id_required")
		return
	}

	ps := make([]productdom.Product, 0, len(ids))
	for _, id := range ids {
		p, err := a.catalog.ByID(trimmed(id))
		if err != nil {
			a.writeErr(w, r, err)
			return
		}
		ps = append(ps, p)
	}

	cart := current(r).Cart
	if err := cart.AddMultipleToCart(ps); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	a.cartOp(w, r, current(r).Cart.RemoveFromCart)
}

func (a *API) increaseCartItem(w http.ResponseWriter, r *http.Request) {
	a.cartOp(w, r, current(r).Cart.IncreaseQuantity)
}

func (a *API) decreaseCartItem(w http.ResponseWriter, r *http.Request) {
	a.cartOp(w, r, current(r).Cart.DecreaseQuantity)
}

func (a *API) cartOp(w http.ResponseWriter, r *http.Request, op func(productID string) error) {
	if err := op(chi.URLParam(r, "id")); err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, current(r).Cart.Snapshot())
}

func (a *API) toggleCartItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	on, err := current(r).Cart.ToggleSelected(id)
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggleResponse{ProductID: id, Selected: on})
}

func (a *API) selectAll(w http.ResponseWriter, r *http.Request) {
	cart := current(r).Cart
	cart.SelectAll()
	writeJSON(w, http.StatusOK, cart.Snapshot())
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	cart := current(r).Cart
	cart.ClearCart()
	writeJSON(w, http.StatusOK, cart.Snapshot())
}
