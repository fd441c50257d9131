// internal/domain/product/entity.go
package product

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidID = errors.New("product: invalid id")
	ErrNotFound  = errors.New("product: not found")
)

// Category groups products (also the PC-builder slot a product fills).
type Category struct {
	Name string `json:"name"`
}

// Product is an immutable catalog record. Cart and order entries reference it
// by value and never own it.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Images      []string        `json:"images"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	Rate        float64         `json:"rate"`
	Review      int             `json:"review"`
}

// UnmarshalJSON accepts price as a number or a numeric string. Anything else
// becomes zero instead of failing the whole catalog.
func (p *Product) UnmarshalJSON(b []byte) error {
	type alias Product
	var raw struct {
		alias
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Product(raw.alias)
	p.ID = strings.TrimSpace(p.ID)
	p.Price = ParsePrice(raw.Price)
	if p.Images == nil {
		p.Images = []string{}
	}
	return nil
}

// ParsePrice coerces a raw JSON price (number, string, null) to a decimal.
// Unparseable input yields zero.
func ParsePrice(raw json.RawMessage) decimal.Decimal {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Zero
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Zero
		}
		s = strings.TrimSpace(str)
	}
	return ParsePriceString(s)
}

// ParsePriceString parses a textual price, tolerating a leading currency
// symbol and thousands separators. Unparseable input yields zero.
func ParsePriceString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$₱€£¥ ")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// InStock reports whether at least one unit is available.
func (p Product) InStock() bool {
	return p.Stock > 0
}

func (p Product) clone() Product {
	cp := p
	cp.Images = append([]string{}, p.Images...)
	return cp
}
