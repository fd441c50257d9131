// Package di assembles the storefront service from configuration.
package di

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/adapters/in/http/storefront"
	"storefront/internal/application/session"
	"storefront/internal/application/usecase"
	productdom "storefront/internal/domain/product"
	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/metrics"
	"storefront/internal/platform/di/shared"
)

// Container is everything cmd/storefront needs to serve.
type Container struct {
	Config   *appcfg.Config
	Log      *zap.Logger
	Metrics  *metrics.Metrics
	Catalog  *productdom.Catalog
	Registry *session.Registry
	Infra    *shared.Infra

	// Backend names the profile/address backend in use.
	Backend string
}

// NewContainer opens the configured infrastructure and wires the session
// registry on top of it.
func NewContainer(ctx context.Context, cfg *appcfg.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cat, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	infra, err := shared.NewInfra(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c := &Container{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(true),
		Catalog: cat,
		Infra:   infra,
	}

	profiles, addresses, backend, err := buildRepositories(infra)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Backend = backend

	idp, err := buildIdentity(ctx, infra, log)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("di: identity: %w", err)
	}
	mailer, err := buildMailer(ctx, infra, log)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("di: mailer: %w", err)
	}

	deps := session.Deps{
		Catalog:     cat,
		KV:          buildKV(infra),
		Identity:    idp,
		Profiles:    profiles,
		Addresses:   addresses,
		Pictures:    buildPictures(infra),
		Submitter:   usecase.SimulatedSubmitter{Delay: cfg.OrderSubmitDelay},
		Mailer:      mailer,
		OrdersLimit: cfg.OrdersLimit,
		AlertLimit:  cfg.AlertLimit,
		Store: usecase.Deps{
			Log:     log,
			Metrics: c.Metrics,
		},
	}
	c.Registry = session.NewRegistry(deps, cfg.SessionTTL)

	log.Info("[di] container ready",
		zap.String("backend", backend),
		zap.Int("products", cat.Len()),
		zap.Bool("redis", infra.Redis != nil),
		zap.Bool("pictures", deps.Pictures != nil),
		zap.Bool("receipts", mailer != nil),
	)
	return c, nil
}

// Router builds the HTTP handler.
func (c *Container) Router() http.Handler {
	return storefront.NewRouter(storefront.Deps{
		Sessions:       c.Registry,
		Catalog:        c.Catalog,
		Metrics:        c.Metrics,
		Log:            c.Log,
		AllowedOrigins: c.Config.CORSAllowedOrigins,
		Ready:          c.Infra.Ping,
	})
}

// Close ends every session, then releases the infrastructure.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Registry != nil {
		c.Registry.Close()
	}
	return c.Infra.Close()
}

// LoadCatalog reads path, or the embedded catalog when path is empty.
func LoadCatalog(path string) (*productdom.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return productdom.Default()
	}
	cat, err := productdom.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("di: catalog %s: %w", path, err)
	}
	return cat, nil
}
