package usecase_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/application/usecase"
	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func testDeps() usecase.Deps {
	return usecase.Deps{Clock: usecase.ClockFunc(func() time.Time { return fixedNow })}
}

func prod(id string, price int64, stock int) productdom.Product {
	return productdom.Product{
		ID:       id,
		Name:     id,
		Price:    decimal.NewFromInt(price),
		Stock:    stock,
		Category: productdom.Category{Name: "Misc"},
	}
}

type countingMetrics struct {
	usecase.NopMetrics
	mu     sync.Mutex
	ops    []string
	placed int
	failed int
}

func (m *countingMetrics) CartMutated(op string) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.mu.Unlock()
}
func (m *countingMetrics) OrderPlaced() { m.mu.Lock(); m.placed++; m.mu.Unlock() }
func (m *countingMetrics) OrderFailed() { m.mu.Lock(); m.failed++; m.mu.Unlock() }

func TestCartStore_SubscribeSeesEveryChange(t *testing.T) {
	s := usecase.NewCartStore(testDeps())

	var got []usecase.CartSnapshot
	sub := s.Subscribe(func(v usecase.CartSnapshot) { got = append(got, v) })
	defer sub.Unsubscribe()

	require.NoError(t, s.AddToCart(prod("a", 10, 3)))
	require.NoError(t, s.AddToCart(prod("a", 10, 3)))
	require.NoError(t, s.IncreaseQuantity("a"))

	require.Len(t, got, 4, "initial snapshot plus one per mutation")
	assert.Equal(t, 0, got[0].ItemCount)
	last := got[3]
	assert.Equal(t, 3, last.ItemCount)
	assert.Equal(t, "30", last.Subtotal.String())
}

func TestCartStore_FailedMutationLeavesCartAndFeedAlone(t *testing.T) {
	m := &countingMetrics{}
	s := usecase.NewCartStore(usecase.Deps{Metrics: m})
	require.NoError(t, s.AddToCart(prod("a", 1, 1)))

	calls := 0
	sub := s.Subscribe(func(usecase.CartSnapshot) { calls++ })
	defer sub.Unsubscribe()

	assert.ErrorIs(t, s.IncreaseQuantity("missing"), cartdom.ErrEntryNotFound)
	assert.ErrorIs(t, s.AddMultipleToCart([]productdom.Product{{ID: ""}, {ID: " "}}), cartdom.ErrInvalidProduct)

	assert.Equal(t, 1, calls, "only the initial delivery")
	snap := s.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, []string{"add"}, m.ops)
}

func TestCartStore_AddMultipleSkipsInvalidProducts(t *testing.T) {
	m := &countingMetrics{}
	s := usecase.NewCartStore(usecase.Deps{Metrics: m})

	calls := 0
	sub := s.Subscribe(func(usecase.CartSnapshot) { calls++ })
	defer sub.Unsubscribe()

	err := s.AddMultipleToCart([]productdom.Product{prod("a", 1, 1), {ID: ""}, prod("b", 2, 1)})
	assert.ErrorIs(t, err, cartdom.ErrInvalidProduct)

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, "a", snap.Entries[0].Product.ID)
	assert.Equal(t, "b", snap.Entries[1].Product.ID)
	assert.Equal(t, 2, snap.ItemCount)
	assert.Equal(t, 2, calls, "initial delivery plus one commit")
	assert.Equal(t, []string{"add_many"}, m.ops)
}

func TestCartStore_DecreaseAtOneKeepsEntry(t *testing.T) {
	s := usecase.NewCartStore(testDeps())
	require.NoError(t, s.AddToCart(prod("a", 1, 1)))
	require.NoError(t, s.DecreaseQuantity("a"))

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, 1, snap.Entries[0].Quantity)
}

func TestCartStore_SelectionAndRemoveProducts(t *testing.T) {
	s := usecase.NewCartStore(testDeps())
	require.NoError(t, s.AddMultipleToCart([]productdom.Product{prod("a", 1, 1), prod("b", 2, 1), prod("c", 3, 1)}))

	on, err := s.ToggleSelected("a")
	require.NoError(t, err)
	assert.True(t, on)
	_, err = s.ToggleSelected("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, s.Snapshot().Selected)

	require.NoError(t, s.RemoveProducts([]string{"a", "c"}))
	snap := s.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "b", snap.Entries[0].Product.ID)
	assert.Empty(t, snap.Selected)

	s.SelectAll()
	assert.Len(t, s.Selected(), 1)
	s.ClearCart()
	assert.Empty(t, s.Snapshot().Entries)
}

func TestCartStore_ConcurrentAdds(t *testing.T) {
	s := usecase.NewCartStore(usecase.Deps{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.AddToCart(prod("a", 1, 1))
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, 50, snap.Entries[0].Quantity)
}
