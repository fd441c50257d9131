package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	pcbuilddom "storefront/internal/domain/pcbuild"
	productdom "storefront/internal/domain/product"
)

// BuilderView is the PC-builder state returned to clients.
type BuilderView struct {
	Parts map[string]productdom.Product `json:"parts"`
	Total decimal.Decimal               `json:"total"`
}

// BuilderStore holds the PC-builder selection of one session and persists it
// under pcbuild.StorageKey after every change.
type BuilderStore struct {
	mu      sync.Mutex
	sel     *pcbuilddom.Selection
	kv      pcbuilddom.KV
	catalog *productdom.Catalog
	cart    *CartStore
	log     *zap.Logger
}

func NewBuilderStore(kv pcbuilddom.KV, catalog *productdom.Catalog, cart *CartStore, deps Deps) *BuilderStore {
	deps = deps.WithDefaults()
	return &BuilderStore{
		sel:     pcbuilddom.NewSelection(),
		kv:      kv,
		catalog: catalog,
		cart:    cart,
		log:     deps.Log.Named("builder"),
	}
}

// Load replaces the in-memory selection with the stored one. A missing key
// yields an empty selection; an unreadable value is discarded.
func (s *BuilderStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.kv.Get(ctx, pcbuilddom.StorageKey)
	if errors.Is(err, pcbuilddom.ErrKeyNotFound) {
		s.sel = pcbuilddom.NewSelection()
		return nil
	}
	if err != nil {
		return err
	}
	next := pcbuilddom.NewSelection()
	if err := json.Unmarshal(raw, next); err != nil {
		s.log.Warn("[builder] stored selection unreadable, starting empty", zap.Error(err))
		next = pcbuilddom.NewSelection()
	}
	s.sel = next
	return nil
}

// Toggle selects or deselects a catalog product in its category and persists
// the result. The in-memory selection only changes when the write succeeds.
func (s *BuilderStore) Toggle(ctx context.Context, productID string) (BuilderView, error) {
	p, err := s.catalog.ByID(productID)
	if err != nil {
		return BuilderView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.sel.Clone()
	if _, err := next.Toggle(p); err != nil {
		return BuilderView{}, err
	}
	if err := s.save(ctx, next); err != nil {
		return BuilderView{}, err
	}
	s.sel = next
	return viewOf(next), nil
}

// View returns the current selection and its total.
func (s *BuilderStore) View() BuilderView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return viewOf(s.sel)
}

// Confirm adds every selected product to the cart. It returns how many
// products were added.
func (s *BuilderStore) Confirm() (int, error) {
	s.mu.Lock()
	ps := s.sel.Products()
	s.mu.Unlock()

	if len(ps) == 0 {
		return 0, nil
	}
	if err := s.cart.AddMultipleToCart(ps); err != nil {
		return 0, err
	}
	s.log.Info("[builder] confirmed into cart", zap.Int("parts", len(ps)))
	return len(ps), nil
}

// Reset clears the selection and its stored copy.
func (s *BuilderStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, pcbuilddom.StorageKey); err != nil {
		return err
	}
	s.sel = pcbuilddom.NewSelection()
	return nil
}

func (s *BuilderStore) save(ctx context.Context, sel *pcbuilddom.Selection) error {
	b, err := json.Marshal(sel)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, pcbuilddom.StorageKey, b)
}

func viewOf(sel *pcbuilddom.Selection) BuilderView {
	parts := make(map[string]productdom.Product, sel.Len())
	for _, c := range sel.Categories() {
		p, _ := sel.Get(c)
		parts[c] = p
	}
	return BuilderView{Parts: parts, Total: sel.Total()}
}
