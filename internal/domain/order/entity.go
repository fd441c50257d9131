// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain/checkout"
)

// Status is the lifecycle label shown in order history.
type Status string

const (
	StatusPlaced     Status = "placed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Item is stored inside Order.Items with the price at order time.
type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ShippingSnapshot copies the delivery address at order time.
type ShippingSnapshot struct {
	AddressID    string `json:"addressId,omitempty"`
	AddressLine1 string `json:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	Country      string `json:"country,omitempty"`
}

// Order is an immutable receipt of a completed checkout.
type Order struct {
	ID        string            `json:"id"`
	OrderDate time.Time         `json:"orderDate"`
	Status    Status            `json:"status"`
	Items     []Item            `json:"items"`
	Summary   checkout.Summary  `json:"summary"`
	Shipping  *ShippingSnapshot `json:"shipping,omitempty"`
}

var (
	ErrInvalidID        = errors.New("order: invalid id")
	ErrInvalidOrderDate = errors.New("order: invalid orderDate")
	ErrInvalidStatus    = errors.New("order: invalid status")
	ErrInvalidItems     = errors.New("order: invalid items")
	ErrNotFound         = errors.New("order: not found")
)

// MinItemsRequired is the smallest order that may be placed.
var MinItemsRequired = 1

// New builds an order and computes its summary from the items.
func New(id string, items []Item, shipping *ShippingSnapshot, orderDate time.Time) (Order, error) {
	ns := normalizeItems(items)
	o := Order{
		ID:        strings.TrimSpace(id),
		OrderDate: orderDate.UTC(),
		Status:    StatusPlaced,
		Items:     ns,
		Summary:   checkout.Summarize(Lines(ns)),
	}
	if shipping != nil {
		s := *shipping
		o.Shipping = &s
	}
	if err := o.validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Lines converts items to checkout lines.
func Lines(items []Item) []checkout.Line {
	out := make([]checkout.Line, 0, len(items))
	for _, it := range items {
		out = append(out, checkout.Line{Price: it.Price, Quantity: it.Quantity})
	}
	return out
}

// ProductIDs lists the ordered product ids in item order.
func (o Order) ProductIDs() []string {
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, it.ProductID)
	}
	return out
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	cp := o
	cp.Items = append([]Item{}, o.Items...)
	if o.Shipping != nil {
		s := *o.Shipping
		cp.Shipping = &s
	}
	return cp
}

func (o Order) validate() error {
	if o.ID == "" {
		return ErrInvalidID
	}
	if o.OrderDate.IsZero() {
		return ErrInvalidOrderDate
	}
	if !o.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(o.Items) < MinItemsRequired {
		return ErrInvalidItems
	}
	for _, it := range o.Items {
		if it.ProductID == "" || it.Quantity < 1 || it.Price.IsNegative() {
			return ErrInvalidItems
		}
	}
	return nil
}

func normalizeItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		it.ProductID = strings.TrimSpace(it.ProductID)
		it.Name = strings.TrimSpace(it.Name)
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		out = append(out, it)
	}
	return out
}
