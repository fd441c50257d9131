// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

var (
	ErrInvalidCart    = errors.New("cart: invalid")
	ErrInvalidProduct = errors.New("cart: invalid product")
	ErrEntryNotFound  = errors.New("cart: entry not found")
)

// Entry is one line of the cart. Quantity is always >= 1 while the entry exists.
type Entry struct {
	Product  productdom.Product `json:"product"`
	Quantity int                `json:"quantity"`
}

// LineTotal is price * quantity.
func (e Entry) LineTotal() decimal.Decimal {
	return e.Product.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is the in-progress selection of products for one session.
//   - at most one Entry per product id (adding again increments)
//   - entries keep insertion order
//   - Selected is the subset of product ids picked for checkout
type Cart struct {
	Entries  []Entry             `json:"entries"`
	Selected map[string]struct{} `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCart returns an empty cart.
func NewCart(now time.Time) *Cart {
	return &Cart{
		Entries:   []Entry{},
		Selected:  map[string]struct{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add increments the entry for p or inserts it with quantity 1.
// Stock is not checked here.
func (c *Cart) Add(p productdom.Product, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return ErrInvalidProduct
	}
	p.ID = id

	if idx := c.indexOf(id); idx >= 0 {
		c.Entries[idx].Quantity++
	} else {
		c.Entries = append(c.Entries, Entry{Product: p, Quantity: 1})
	}

	c.touch(now)
	return c.validate()
}

// AddMany applies Add to each product in order; repeated products each count.
// Products with an empty id are skipped and reported via the returned error
// after the valid ones are applied.
func (c *Cart) AddMany(ps []productdom.Product, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	var firstErr error
	for _, p := range ps {
		if err := c.Add(p, now); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Remove drops the entry regardless of its quantity. Removing an absent
// product is a no-op.
func (c *Cart) Remove(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	id := strings.TrimSpace(productID)
	if idx := c.indexOf(id); idx >= 0 {
		c.Entries = append(c.Entries[:idx], c.Entries[idx+1:]...)
	}
	delete(c.Selected, id)
	c.touch(now)
	return c.validate()
}

// RemoveMany drops every listed product (used after an order consumes them).
func (c *Cart) RemoveMany(productIDs []string, now time.Time) error {
	for _, id := range productIDs {
		if err := c.Remove(id, now); err != nil {
			return err
		}
	}
	return nil
}

// Increase adds one unit to an existing entry.
func (c *Cart) Increase(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	idx := c.indexOf(strings.TrimSpace(productID))
	if idx < 0 {
		return ErrEntryNotFound
	}
	c.Entries[idx].Quantity++
	c.touch(now)
	return c.validate()
}

// Decrease removes one unit; at quantity 1 it is a no-op. Entries are only
// removed through Remove.
func (c *Cart) Decrease(productID string, now time.Time) error {
	if c == nil {
		return ErrInvalidCart
	}
	idx := c.indexOf(strings.TrimSpace(productID))
	if idx < 0 {
		return ErrEntryNotFound
	}
	if c.Entries[idx].Quantity <= 1 {
		return nil
	}
	c.Entries[idx].Quantity--
	c.touch(now)
	return c.validate()
}

// Clear empties the cart and the selection.
func (c *Cart) Clear(now time.Time) {
	if c == nil {
		return
	}
	c.Entries = []Entry{}
	c.Selected = map[string]struct{}{}
	c.touch(now)
}

// ToggleSelected flips whether an existing entry is picked for checkout.
// It returns the new selection state.
func (c *Cart) ToggleSelected(productID string) (bool, error) {
	if c == nil {
		return false, ErrInvalidCart
	}
	id := strings.TrimSpace(productID)
	if c.indexOf(id) < 0 {
		return false, ErrEntryNotFound
	}
	if c.Selected == nil {
		c.Selected = map[string]struct{}{}
	}
	if _, ok := c.Selected[id]; ok {
		delete(c.Selected, id)
		return false, nil
	}
	c.Selected[id] = struct{}{}
	return true, nil
}

// SelectAll picks every entry; if all are already picked it clears the selection.
func (c *Cart) SelectAll() {
	if c == nil {
		return
	}
	if len(c.Selected) == len(c.Entries) {
		c.Selected = map[string]struct{}{}
		return
	}
	c.Selected = make(map[string]struct{}, len(c.Entries))
	for _, e := range c.Entries {
		c.Selected[e.Product.ID] = struct{}{}
	}
}

// SelectedEntries returns the picked entries in cart order.
func (c *Cart) SelectedEntries() []Entry {
	out := []Entry{}
	if c == nil {
		return out
	}
	for _, e := range c.Entries {
		if _, ok := c.Selected[e.Product.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// IsSelected reports whether the product is picked for checkout.
func (c *Cart) IsSelected(productID string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Selected[strings.TrimSpace(productID)]
	return ok
}

// Entry returns the entry for productID.
func (c *Cart) Entry(productID string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	idx := c.indexOf(strings.TrimSpace(productID))
	if idx < 0 {
		return Entry{}, false
	}
	return c.Entries[idx], true
}

// ItemCount is the sum of quantities.
func (c *Cart) ItemCount() int {
	n := 0
	if c == nil {
		return n
	}
	for _, e := range c.Entries {
		n += e.Quantity
	}
	return n
}

// Subtotal is the sum of line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	if c == nil {
		return sum
	}
	for _, e := range c.Entries {
		sum = sum.Add(e.LineTotal())
	}
	return sum
}

// Clone returns a deep copy safe to hand to readers.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	cp := &Cart{
		Entries:   make([]Entry, len(c.Entries)),
		Selected:  make(map[string]struct{}, len(c.Selected)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	copy(cp.Entries, c.Entries)
	for k := range c.Selected {
		cp.Selected[k] = struct{}{}
	}
	return cp
}

func (c *Cart) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range c.Entries {
		if c.Entries[i].Product.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) touch(now time.Time) {
	if now.IsZero() {
		return
	}
	c.UpdatedAt = now
}

func (c *Cart) validate() error {
	if c == nil {
		return ErrInvalidCart
	}
	seen := make(map[string]struct{}, len(c.Entries))
	for _, e := range c.Entries {
		if e.Product.ID == "" || e.Quantity < 1 {
			return ErrInvalidCart
		}
		if _, dup := seen[e.Product.ID]; dup {
			return ErrInvalidCart
		}
		seen[e.Product.ID] = struct{}{}
	}
	for id := range c.Selected {
		if _, ok := seen[id]; !ok {
			delete(c.Selected, id)
		}
	}
	return nil
}
