// Package storefront is the HTTP surface of the storefront session service.
package storefront

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	mw "storefront/internal/adapters/in/http/middleware"
	"storefront/internal/application/session"
	productdom "storefront/internal/domain/product"
	"storefront/internal/infra/metrics"
)

// Sessions is the session registry as the handlers use it.
type Sessions interface {
	Open(ctx context.Context, id string) (*session.Session, error)
	Get(id string) (*session.Session, error)
	End(id string) error
}

// Deps wires the router.
type Deps struct {
	Sessions Sessions
	Catalog  *productdom.Catalog
	Metrics  *metrics.Metrics
	Log      *zap.Logger

	AllowedOrigins []string

	// Ready reports backend health for /healthz. Nil means always ready.
	Ready func(ctx context.Context) error
}

// API holds the handler dependencies.
type API struct {
	sessions Sessions
	catalog  *productdom.Catalog
	log      *zap.Logger
	ready    func(ctx context.Context) error
	upgrader wsUpgrader
}

// NewRouter builds the chi router with every route mounted.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	a := &API{
		sessions: d.Sessions,
		catalog:  d.Catalog,
		log:      log.Named("http"),
		ready:    d.Ready,
		upgrader: newUpgrader(d.AllowedOrigins),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(a.log))
	r.Use(mw.Recover(a.log))
	r.Use(mw.CORS(d.AllowedOrigins))
	r.Use(mw.Metrics(d.Metrics))

	r.Get("/healthz", a.healthz)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/products", a.listProducts)
		r.Get("/products/{id}", a.getProduct)
		r.Get("/categories", a.listCategories)
	})

	r.Post("/sessions", a.openSession)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(a.sessions))

		r.Get("/sessions/current", a.currentSession)
		r.Delete("/sessions/current", a.endSession)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", a.getCart)
			r.Delete("/", a.clearCart)
			r.Get("/stream", a.streamCart)
			r.Post("/items", a.addCartItems)
			r.Post("/select-all", a.selectAll)
			r.Delete("/items/{id}", a.removeCartItem)
			r.Post("/items/{id}/increase", a.increaseCartItem)
			r.Post("/items/{id}/decrease", a.decreaseCartItem)
			r.Post("/items/{id}/select", a.toggleCartItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/quote", a.quote)
			r.Post("/orders", a.placeOrder)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", a.listOrders)
			r.Delete("/", a.clearOrders)
			r.Get("/{id}", a.getOrder)
		})

		r.Route("/builder", func(r chi.Router) {
			r.Get("/", a.getBuilder)
			r.Delete("/", a.resetBuilder)
			r.Post("/toggle", a.toggleBuilder)
			r.Post("/confirm", a.confirmBuilder)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/state", a.authState)
			r.Post("/login", a.login)
			r.Post("/signup", a.signup)
			r.Post("/logout", a.logout)
			r.Post("/resume", a.resume)
		})

		r.Route("/me", func(r chi.Router) {
			r.Get("/profile", a.getProfile)
			r.Patch("/profile", a.patchProfile)
			r.Post("/profile", a.createProfile)
			r.Put("/profile/picture", a.putProfilePicture)

			r.Get("/addresses", a.listAddresses)
			r.Post("/addresses", a.addAddress)
			r.Get("/addresses/stream", a.streamAddresses)
			r.Put("/addresses/{id}", a.updateAddress)
			r.Delete("/addresses/{id}", a.deleteAddress)
		})

		r.Get("/alerts", a.listAlerts)
	})

	return r
}

// current returns the session attached by RequireSession.
func current(r *http.Request) *session.Session {
	s, _ := mw.SessionFrom(r.Context())
	return s
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		if err := a.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
