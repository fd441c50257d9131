// internal/application/usecase/cart_store.go
package usecase

import (
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
	"storefront/internal/platform/live"
)

// CartSnapshot is the read-only view published after every cart change.
type CartSnapshot struct {
	Entries   []cartdom.Entry `json:"entries"`
	Selected  []string        `json:"selected"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartStore owns the cart of one session. It is not persisted.
//
// Subscribers run while the store lock is held and must not call back into
// the store.
type CartStore struct {
	mu   sync.Mutex
	cart *cartdom.Cart
	deps Deps
	log  *zap.Logger
	feed *live.Feed[CartSnapshot]
}

func NewCartStore(deps Deps) *CartStore {
	deps = deps.WithDefaults()
	c := cartdom.NewCart(deps.Clock.Now())
	return &CartStore{
		cart: c,
		deps: deps,
		log:  deps.Log.Named("cart"),
		feed: live.NewFeed(snapshotOf(c)),
	}
}

// AddToCart increments the entry for p or inserts it with quantity 1.
func (s *CartStore) AddToCart(p productdom.Product) error {
	return s.mutate("add", func(c *cartdom.Cart) error {
		return c.Add(p, s.deps.Clock.Now())
	})
}

// AddMultipleToCart applies AddToCart to each product in order. Invalid
// products are skipped: the valid ones are committed as one change and the
// first skip is returned. When nothing valid remains the cart is untouched.
func (s *CartStore) AddMultipleToCart(ps []productdom.Product) error {
	var skipped error
	err := s.mutate("add_many", func(c *cartdom.Cart) error {
		before := c.ItemCount()
		skipped = c.AddMany(ps, s.deps.Clock.Now())
		if skipped != nil && c.ItemCount() == before {
			return skipped
		}
		return nil
	})
	if err != nil {
		return err
	}
	return skipped
}

// RemoveFromCart drops the entry regardless of quantity.
func (s *CartStore) RemoveFromCart(productID string) error {
	return s.mutate("remove", func(c *cartdom.Cart) error {
		return c.Remove(productID, s.deps.Clock.Now())
	})
}

// RemoveProducts drops the entries consumed by a placed order.
func (s *CartStore) RemoveProducts(productIDs []string) error {
	return s.mutate("remove_many", func(c *cartdom.Cart) error {
		return c.RemoveMany(productIDs, s.deps.Clock.Now())
	})
}

func (s *CartStore) IncreaseQuantity(productID string) error {
	return s.mutate("increase", func(c *cartdom.Cart) error {
		return c.Increase(productID, s.deps.Clock.Now())
	})
}

// DecreaseQuantity is a no-op at quantity 1.
func (s *CartStore) DecreaseQuantity(productID string) error {
	return s.mutate("decrease", func(c *cartdom.Cart) error {
		return c.Decrease(productID, s.deps.Clock.Now())
	})
}

func (s *CartStore) ClearCart() {
	_ = s.mutate("clear", func(c *cartdom.Cart) error {
		c.Clear(s.deps.Clock.Now())
		return nil
	})
}

// ToggleSelected flips whether productID is picked for checkout.
func (s *CartStore) ToggleSelected(productID string) (bool, error) {
	var on bool
	err := s.mutate("select", func(c *cartdom.Cart) error {
		var err error
		on, err = c.ToggleSelected(productID)
		return err
	})
	return on, err
}

// SelectAll picks every entry, or clears the selection if all are picked.
func (s *CartStore) SelectAll() {
	_ = s.mutate("select_all", func(c *cartdom.Cart) error {
		c.SelectAll()
		return nil
	})
}

// Selected returns the picked entries in cart order.
func (s *CartStore) Selected() []cartdom.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.SelectedEntries()
}

// Snapshot returns the current cart view.
func (s *CartStore) Snapshot() CartSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.cart)
}

// Subscribe delivers the current snapshot and every later one.
func (s *CartStore) Subscribe(fn func(CartSnapshot)) live.Subscription {
	return s.feed.Subscribe(fn)
}

// mutate runs fn on a working copy and commits it only when fn succeeds,
// so a failed operation leaves the cart untouched.
func (s *CartStore) mutate(op string, fn func(c *cartdom.Cart) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.cart.Clone()
	if err := fn(work); err != nil {
		s.log.Debug("[cart] mutation rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	s.cart = work
	s.deps.Metrics.CartMutated(op)
	s.feed.Publish(snapshotOf(work))
	return nil
}

func snapshotOf(c *cartdom.Cart) CartSnapshot {
	entries := append([]cartdom.Entry{}, c.Entries...)
	selected := make([]string, 0, len(c.Selected))
	for _, e := range c.SelectedEntries() {
		selected = append(selected, e.Product.ID)
	}
	return CartSnapshot{
		Entries:   entries,
		Selected:  selected,
		ItemCount: c.ItemCount(),
		Subtotal:  c.Subtotal(),
	}
}
