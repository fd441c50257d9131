// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cartdom "storefront/internal/domain/cart"
	"storefront/internal/domain/checkout"
	orderdom "storefront/internal/domain/order"
	productdom "storefront/internal/domain/product"
)

// OrderSubmitter is an outbound port that hands a finished order to whatever
// fulfils it.
type OrderSubmitter interface {
	Submit(ctx context.Context, o orderdom.Order) error
}

// SimulatedSubmitter accepts every order after an optional delay.
type SimulatedSubmitter struct {
	Delay time.Duration
}

func (s SimulatedSubmitter) Submit(ctx context.Context, _ orderdom.Order) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReceiptMailer sends an order confirmation. Failures never fail the order.
type ReceiptMailer interface {
	SendReceipt(ctx context.Context, to string, o orderdom.Order) error
}

// LineItem is a "buy now" request for a catalog product.
type LineItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput selects what to order. With no Items the cart selection
// is ordered and the consumed entries leave the cart.
type PlaceOrderInput struct {
	Items        []LineItem                 `json:"items,omitempty"`
	Shipping     *orderdom.ShippingSnapshot `json:"shipping,omitempty"`
	ReceiptEmail string                     `json:"receiptEmail,omitempty"`
}

// CheckoutUsecase turns a cart selection (or explicit lines) into an order.
type CheckoutUsecase struct {
	catalog   *productdom.Catalog
	cart      *CartStore
	orders    *OrdersStore
	submitter OrderSubmitter
	mailer    ReceiptMailer
	alerts    *Alerts
	deps      Deps
	log       *zap.Logger
	newID     func() (uuid.UUID, error)
}

func NewCheckoutUsecase(
	catalog *productdom.Catalog,
	cart *CartStore,
	orders *OrdersStore,
	submitter OrderSubmitter,
	mailer ReceiptMailer,
	alerts *Alerts,
	deps Deps,
) *CheckoutUsecase {
	deps = deps.WithDefaults()
	if submitter == nil {
		submitter = SimulatedSubmitter{}
	}
	return &CheckoutUsecase{
		catalog:   catalog,
		cart:      cart,
		orders:    orders,
		submitter: submitter,
		mailer:    mailer,
		alerts:    alerts,
		deps:      deps,
		log:       deps.Log.Named("checkout"),
		newID:     uuid.NewV7,
	}
}

// Quote prices arbitrary lines.
func (u *CheckoutUsecase) Quote(lines []checkout.Line) checkout.Summary {
	return checkout.Summarize(lines)
}

// QuoteItems prices catalog products by id. Unknown ids are an error.
func (u *CheckoutUsecase) QuoteItems(items []LineItem) (checkout.Summary, error) {
	its, err := u.itemsFromCatalog(items)
	if err != nil {
		return checkout.Summary{}, err
	}
	return checkout.Summarize(orderdom.Lines(its)), nil
}

// QuoteSelection prices the current cart selection.
func (u *CheckoutUsecase) QuoteSelection() checkout.Summary {
	return checkout.Summarize(orderdom.Lines(itemsFromEntries(u.cart.Selected())))
}

// PlaceOrder builds, submits and records an order. When submission fails the
// order is abandoned: nothing is recorded, the cart is untouched and the
// error wraps ErrOrderSubmission.
func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, in PlaceOrderInput) (orderdom.Order, error) {
	fromCart := len(in.Items) == 0

	var items []orderdom.Item
	if fromCart {
		items = itemsFromEntries(u.cart.Selected())
	} else {
		its, err := u.itemsFromCatalog(in.Items)
		if err != nil {
			return orderdom.Order{}, err
		}
		items = its
	}
	if len(items) == 0 {
		return orderdom.Order{}, ErrNothingToOrder
	}

	id, err := u.newID()
	if err != nil {
		return orderdom.Order{}, fmt.Errorf("checkout: generate id: %w", err)
	}
	o, err := orderdom.New(id.String(), items, in.Shipping, u.deps.Clock.Now())
	if err != nil {
		return orderdom.Order{}, err
	}

	if err := u.submitter.Submit(ctx, o); err != nil {
		u.deps.Metrics.OrderFailed()
		u.log.Warn("[checkout] submit failed, order abandoned",
			zap.String("orderId", o.ID), zap.Error(err))
		werr := fmt.Errorf("%w: %w", ErrOrderSubmission, err)
		u.alerts.Push("Order failed", werr)
		return orderdom.Order{}, werr
	}

	u.orders.AddOrder(o)
	if fromCart {
		if err := u.cart.RemoveProducts(o.ProductIDs()); err != nil {
			u.log.Warn("[checkout] cart cleanup failed", zap.String("orderId", o.ID), zap.Error(err))
		}
	}
	u.deps.Metrics.OrderPlaced()
	u.log.Info("[checkout] order placed",
		zap.String("orderId", o.ID),
		zap.Int("items", o.Summary.ItemCount),
		zap.String("total", o.Summary.Total.StringFixed(2)))

	u.sendReceipt(ctx, in.ReceiptEmail, o)
	return o, nil
}

func (u *CheckoutUsecase) sendReceipt(ctx context.Context, to string, o orderdom.Order) {
	to = strings.TrimSpace(to)
	if u.mailer == nil || to == "" {
		return
	}
	if err := u.mailer.SendReceipt(ctx, to, o); err != nil {
		u.log.Warn("[checkout] receipt mail failed", zap.String("orderId", o.ID), zap.Error(err))
	}
}

func (u *CheckoutUsecase) itemsFromCatalog(lines []LineItem) ([]orderdom.Item, error) {
	if u.catalog == nil {
		return nil, errors.New("checkout: catalog is not configured")
	}
	out := make([]orderdom.Item, 0, len(lines))
	for _, l := range lines {
		p, err := u.catalog.ByID(l.ProductID)
		if err != nil {
			return nil, err
		}
		q := l.Quantity
		if q <= 0 {
			q = 1
		}
		if _, err := checkout.SelectQuantity(q, p.Stock); err != nil {
			return nil, fmt.Errorf("%w: product=%s quantity=%d stock=%d", err, p.ID, q, p.Stock)
		}
		out = append(out, itemFromProduct(p, q))
	}
	return out, nil
}

func itemsFromEntries(entries []cartdom.Entry) []orderdom.Item {
	out := make([]orderdom.Item, 0, len(entries))
	for _, e := range entries {
		out = append(out, itemFromProduct(e.Product, e.Quantity))
	}
	return out
}

func itemFromProduct(p productdom.Product, qty int) orderdom.Item {
	img := ""
	if len(p.Images) > 0 {
		img = p.Images[0]
	}
	return orderdom.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     img,
		Category:  p.Category.Name,
		Quantity:  qty,
		Price:     p.Price,
	}
}
