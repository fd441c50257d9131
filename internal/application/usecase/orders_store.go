package usecase

import (
	"strings"
	"sync"

	orderdom "storefront/internal/domain/order"
)

// DefaultOrdersLimit bounds the session order history.
const DefaultOrdersLimit = 100

// OrdersStore keeps the orders placed in one session, most recent first.
// It is bounded (oldest dropped) and never persisted.
type OrdersStore struct {
	mu     sync.RWMutex
	orders []orderdom.Order
	limit  int
}

func NewOrdersStore(limit int) *OrdersStore {
	if limit <= 0 {
		limit = DefaultOrdersLimit
	}
	return &OrdersStore{orders: []orderdom.Order{}, limit: limit}
}

// AddOrder inserts o at index 0.
func (s *OrdersStore) AddOrder(o orderdom.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]orderdom.Order, 0, min(len(s.orders)+1, s.limit))
	next = append(next, o.Clone())
	for _, cur := range s.orders {
		if len(next) == s.limit {
			break
		}
		next = append(next, cur)
	}
	s.orders = next
}

func (s *OrdersStore) ClearSessionOrders() {
	s.mu.Lock()
	s.orders = []orderdom.Order{}
	s.mu.Unlock()
}

// List returns copies, most recent first.
func (s *OrdersStore) List() []orderdom.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]orderdom.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (s *OrdersStore) Get(id string) (orderdom.Order, error) {
	id = strings.TrimSpace(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return orderdom.Order{}, orderdom.ErrNotFound
}

func (s *OrdersStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}

func (s *OrdersStore) Limit() int { return s.limit }
