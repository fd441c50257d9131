// internal/domain/checkout/summary.go
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"

	productdom "storefront/internal/domain/product"
)

// Business constants.
var (
	ShippingCost = decimal.RequireFromString("50.00")
	TaxRate      = decimal.RequireFromString("0.12")
)

var (
	ErrQuantityOutOfStock = errors.New("checkout: quantity out of stock")
	ErrInvalidQuantity    = errors.New("checkout: invalid quantity")
)

// Line is one item to price. Quantity <= 0 is treated as 1.
type Line struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// LineFromString builds a Line from a textual price; unparseable prices are zero.
func LineFromString(price string, quantity int) Line {
	return Line{Price: productdom.ParsePriceString(price), Quantity: quantity}
}

func (l Line) qty() int {
	if l.Quantity <= 0 {
		return 1
	}
	return l.Quantity
}

// Summary is the derived order total.
type Summary struct {
	ItemCount int             `json:"totalQuantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize prices lines. It is pure: same input, same output.
func Summarize(lines []Line) Summary {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		q := l.qty()
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(q))))
		count += q
	}

	shipping := decimal.Zero
	if subtotal.IsPositive() {
		shipping = ShippingCost
	}
	tax := subtotal.Mul(TaxRate)

	return Summary{
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     subtotal.Add(shipping).Add(tax),
	}
}

// SelectQuantity enforces the quantity picker bounds: 1..stock.
func SelectQuantity(quantity, stock int) (int, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if quantity > stock {
		return 0, ErrQuantityOutOfStock
	}
	return quantity, nil
}
