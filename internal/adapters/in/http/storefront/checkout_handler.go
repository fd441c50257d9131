package storefront

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/application/session"
	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	"storefront/internal/domain/checkout"
	orderdom "storefront/internal/domain/order"
)

// quoteRequest prices explicit lines, catalog items, or (when both are
// empty) the cart selection.
type quoteRequest struct {
	Lines []checkout.Line    `json:"lines"`
	Items []usecase.LineItem   `json:"items"`
}

type placeOrderRequest struct {
	Items        []usecase.LineItem `json:"items"`
	AddressID    string             `json:"addressId"`
	ReceiptEmail string             `json:"receiptEmail"`
}

func (a *API) quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	co := current(r).Checkout

	switch {
	case len(req.Lines) > 0:
		writeJSON(w, http.StatusOK, co.Quote(req.Lines))
	case len(req.Items) > 0:
		sum, err := co.QuoteItems(req.Items)
		if err != nil {
			a.writeErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	default:
		writeJSON(w, http.StatusOK, co.QuoteSelection())
	}
}

func (a *API) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := current(r)

	in := usecase.PlaceOrderInput{
		Items:        req.Items,
		ReceiptEmail: trimmed(req.ReceiptEmail),
	}
	if id := trimmed(req.AddressID); id != "" {
		ship, err := shippingFor(s, id)
		if err != nil {
			a.writeErr(w, r, err)
			return
		}
		in.Shipping = ship
	}
	if in.ReceiptEmail == "" {
		if u := s.Auth.State().User; u != nil {
			in.ReceiptEmail = u.Email
		}
	}

	o, err := s.Checkout.PlaceOrder(r.Context(), in)
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// shippingFor copies one of the signed-in user's saved addresses.
func shippingFor(s *session.Session, addressID string) (*orderdom.ShippingSnapshot, error) {
	for _, ad := range s.Auth.Addresses() {
		if ad.ID != addressID {
			continue
		}
		return &orderdom.ShippingSnapshot{
			AddressID:    ad.ID,
			AddressLine1: ad.AddressLine1,
			AddressLine2: ad.AddressLine2,
			City:         ad.City,
			State:        ad.State,
			PostalCode:   ad.PostalCode,
			Country:      ad.Country,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", addressdom.ErrNotFound, addressID)
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, current(r).Orders.List())
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := current(r).Orders.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (a *API) clearOrders(w http.ResponseWriter, r *http.Request) {
	current(r).Orders.ClearSessionOrders()
	w.WriteHeader(http.StatusNoContent)
}
