// internal/domain/pcbuild/entity.go
package pcbuild

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

// StorageKey is the fixed key the selection is stored under.
const StorageKey = "pcBuilderSelection"

var (
	ErrInvalidProduct  = errors.New("pcbuild: invalid product")
	ErrInvalidCategory = errors.New("pcbuild: product has no category")
)

// Selection maps a category name to the one product picked for it.
type Selection struct {
	parts map[string]productdom.Product
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{parts: map[string]productdom.Product{}}
}

// Toggle selects p for its category. Picking the product already selected
// for that category deselects it; picking a different one replaces it.
// It reports whether p is selected afterwards.
func (s *Selection) Toggle(p productdom.Product) (bool, error) {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return false, ErrInvalidProduct
	}
	cat := strings.TrimSpace(p.Category.Name)
	if cat == "" {
		return false, ErrInvalidCategory
	}
	if s.parts == nil {
		s.parts = map[string]productdom.Product{}
	}
	if cur, ok := s.parts[cat]; ok && cur.ID == id {
		delete(s.parts, cat)
		return false, nil
	}
	p.ID = id
	s.parts[cat] = p
	return true, nil
}

// Get returns the product selected for category.
func (s *Selection) Get(category string) (productdom.Product, bool) {
	p, ok := s.parts[strings.TrimSpace(category)]
	return p, ok
}

// Categories lists the filled categories, sorted.
func (s *Selection) Categories() []string {
	out := make([]string, 0, len(s.parts))
	for k := range s.parts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Products returns the selected products ordered by category.
func (s *Selection) Products() []productdom.Product {
	out := make([]productdom.Product, 0, len(s.parts))
	for _, c := range s.Categories() {
		out = append(out, s.parts[c])
	}
	return out
}

// Total sums the selected prices.
func (s *Selection) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.parts {
		sum = sum.Add(p.Price)
	}
	return sum
}

// Len is the number of filled categories.
func (s *Selection) Len() int { return len(s.parts) }

// Clear empties the selection.
func (s *Selection) Clear() { s.parts = map[string]productdom.Product{} }

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	cp := NewSelection()
	for k, v := range s.parts {
		cp.parts[k] = v
	}
	return cp
}

// MarshalJSON stores the selection as a category -> product object.
func (s *Selection) MarshalJSON() ([]byte, error) {
	if s == nil || s.parts == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.parts)
}

// UnmarshalJSON reads a category -> product object. Entries without a
// product id are dropped.
func (s *Selection) UnmarshalJSON(b []byte) error {
	var raw map[string]productdom.Product
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.parts = make(map[string]productdom.Product, len(raw))
	for cat, p := range raw {
		cat = strings.TrimSpace(cat)
		if cat == "" || p.ID == "" {
			continue
		}
		s.parts[cat] = p
	}
	return nil
}
