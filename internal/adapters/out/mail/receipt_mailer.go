// Package mail delivers order receipts by email.
package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	orderdom "storefront/internal/domain/order"
)

// ReceiptMailer implements usecase.ReceiptMailer over an EmailClient.
type ReceiptMailer struct {
	client EmailClient
	from   string
}

func NewReceiptMailer(client EmailClient, from string) *ReceiptMailer {
	return &ReceiptMailer{client: client, from: strings.TrimSpace(from)}
}

func (m *ReceiptMailer) SendReceipt(ctx context.Context, to string, o orderdom.Order) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return nil
	}
	return m.client.Send(ctx, m.from, to, ReceiptSubject(o), ReceiptBody(o))
}

func ReceiptSubject(o orderdom.Order) string {
	return fmt.Sprintf("Order confirmation %s", o.ID)
}

// ReceiptBody renders the plain-text receipt.
func ReceiptBody(o orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order.\n\n")
	fmt.Fprintf(&b, "Order:  %s\n", o.ID)
	fmt.Fprintf(&b, "Placed: %s\n", o.OrderDate.Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(&b, "Status: %s\n\n", o.Status)

	for _, it := range o.Items {
		fmt.Fprintf(&b, "%d x %s  @ %s  = %s\n",
			it.Quantity, it.Name, it.Price.StringFixed(2),
			it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))).StringFixed(2))
	}

	s := o.Summary
	fmt.Fprintf(&b, "\nItems:    %d\n", s.ItemCount)
	fmt.Fprintf(&b, "Subtotal: %s\n", s.Subtotal.StringFixed(2))
	fmt.Fprintf(&b, "Shipping: %s\n", s.Shipping.StringFixed(2))
	fmt.Fprintf(&b, "Tax:      %s\n", s.Tax.StringFixed(2))
	fmt.Fprintf(&b, "Total:    %s\n", s.Total.StringFixed(2))

	if sh := o.Shipping; sh != nil {
		fmt.Fprintf(&b, "\nShip to:\n%s\n", sh.AddressLine1)
		if sh.AddressLine2 != "" {
			fmt.Fprintf(&b, "%s\n", sh.AddressLine2)
		}
		fmt.Fprintf(&b, "%s %s %s\n%s\n", sh.City, sh.State, sh.PostalCode, sh.Country)
	}
	return b.String()
}
