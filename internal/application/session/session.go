// Package session ties the per-client stores together and expires idle
// clients.
package session

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"storefront/internal/application/usecase"
	addressdom "storefront/internal/domain/address"
	pcbuilddom "storefront/internal/domain/pcbuild"
	productdom "storefront/internal/domain/product"
	userdom "storefront/internal/domain/user"
)

var ErrNoKV = errors.New("session: key-value store is not configured")

// Deps are the process-wide collaborators every session is built from.
type Deps struct {
	Catalog *productdom.Catalog

	// KV returns the key-value namespace of one session.
	KV func(sessionID string) pcbuilddom.KV

	Identity  userdom.IdentityProvider
	Profiles  userdom.Repository
	Addresses addressdom.Repository
	Pictures  userdom.PictureStore

	Submitter usecase.OrderSubmitter
	Mailer    usecase.ReceiptMailer

	OrdersLimit int
	AlertLimit  int

	Store usecase.Deps
}

// Session is the state one running client owns.
type Session struct {
	ID        string
	CreatedAt time.Time

	Cart     *usecase.CartStore
	Orders   *usecase.OrdersStore
	Checkout *usecase.CheckoutUsecase
	Builder  *usecase.BuilderStore
	Auth     *usecase.AuthStore
	Alerts   *usecase.Alerts

	lastSeen atomic.Int64
}

// New builds a session and loads its stored PC-builder selection.
func New(ctx context.Context, id string, d Deps, now time.Time) (*Session, error) {
	if d.KV == nil {
		return nil, ErrNoKV
	}
	alerts := usecase.NewAlerts(d.AlertLimit, d.Store.Clock)
	cart := usecase.NewCartStore(d.Store)
	orders := usecase.NewOrdersStore(d.OrdersLimit)

	s := &Session{
		ID:        id,
		CreatedAt: now,
		Cart:      cart,
		Orders:    orders,
		Alerts:    alerts,
		Checkout:  usecase.NewCheckoutUsecase(d.Catalog, cart, orders, d.Submitter, d.Mailer, alerts, d.Store),
		Builder:   usecase.NewBuilderStore(d.KV(id), d.Catalog, cart, d.Store),
		Auth: usecase.NewAuthStore(usecase.AuthStoreConfig{
			Identity:  d.Identity,
			Profiles:  d.Profiles,
			Addresses: d.Addresses,
			Pictures:  d.Pictures,
			Alerts:    alerts,
		}, d.Store),
	}
	s.Touch(now)

	if err := s.Builder.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Touch marks the session as used at now.
func (s *Session) Touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

// LastSeen is the time of the last Touch.
func (s *Session) LastSeen() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Close stops the session's live watches.
func (s *Session) Close() { s.Auth.Close() }
