// internal/domain/product/catalog.go
package product

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Catalog is the static, read-only product list loaded once at startup.
// Accessors hand out copies so callers cannot mutate shared records.
type Catalog struct {
	items []Product
	byID  map[string]int
}

// NewCatalog builds a catalog, rejecting empty or duplicate ids.
func NewCatalog(items []Product) (*Catalog, error) {
	c := &Catalog{
		items: make([]Product, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, p := range items {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, ErrInvalidID
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("product: duplicate id %q", id)
		}
		p.ID = id
		c.byID[id] = len(c.items)
		c.items = append(c.items, p.clone())
	}
	return c, nil
}

// Decode reads a catalog document. Both a bare array and {"products": [...]}
// are accepted.
func Decode(r io.Reader) (*Catalog, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("product: read catalog: %w", err)
	}

	var items []Product
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "{") {
		var doc struct {
			Products []Product `json:"products"`
		}
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("product: decode catalog: %w", err)
		}
		items = doc.Products
	} else if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("product: decode catalog: %w", err)
	}
	return NewCatalog(items)
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("product: open catalog %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// All returns every product in document order.
func (c *Catalog) All() []Product {
	out := make([]Product, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, p.clone())
	}
	return out
}

// ByID returns the product or ErrNotFound.
func (c *Catalog) ByID(id string) (Product, error) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, ErrNotFound
	}
	return c.items[i].clone(), nil
}

// ByCategory filters by category name, case-insensitively.
func (c *Catalog) ByCategory(name string) []Product {
	name = strings.TrimSpace(name)
	out := []Product{}
	for _, p := range c.items {
		if strings.EqualFold(p.Category.Name, name) {
			out = append(out, p.clone())
		}
	}
	return out
}

// Categories returns the distinct category names, sorted.
func (c *Catalog) Categories() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range c.items {
		n := strings.TrimSpace(p.Category.Name)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len is the number of products.
func (c *Catalog) Len() int {
	return len(c.items)
}
