package cart_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "storefront/internal/domain/cart"
	productdom "storefront/internal/domain/product"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func prod(id string, price int64) productdom.Product {
	return productdom.Product{ID: id, Name: id, Price: decimal.NewFromInt(price), Stock: 5}
}

func TestAdd_IncrementsExistingEntry(t *testing.T) {
	c := cartdom.NewCart(now)

	require.NoError(t, c.Add(prod("a", 10), now))
	require.NoError(t, c.Add(prod("a", 10), now))
	require.NoError(t, c.Add(prod("b", 5), now))

	require.Len(t, c.Entries, 2)
	e, ok := c.Entry("a")
	require.True(t, ok)
	assert.Equal(t, 2, e.Quantity)
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, "25", c.Subtotal().String())
}

func TestAdd_RejectsEmptyID(t *testing.T) {
	c := cartdom.NewCart(now)
	assert.ErrorIs(t, c.Add(productdom.Product{ID: "  "}, now), cartdom.ErrInvalidProduct)
	assert.Empty(t, c.Entries)
}

func TestAddMany_DuplicatesEachCount(t *testing.T) {
	c := cartdom.NewCart(now)

	err := c.AddMany([]productdom.Product{prod("a", 1), prod("b", 1), prod("a", 1)}, now)
	require.NoError(t, err)

	a, _ := c.Entry("a")
	b, _ := c.Entry("b")
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, 1, b.Quantity)
}

func TestDecrease_AtOneIsNoop(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.Add(prod("a", 1), now))

	require.NoError(t, c.Decrease("a", now))

	e, ok := c.Entry("a")
	require.True(t, ok, "entry must not be removed by decrease")
	assert.Equal(t, 1, e.Quantity)
}

func TestIncreaseDecrease_MissingEntry(t *testing.T) {
	c := cartdom.NewCart(now)
	assert.ErrorIs(t, c.Increase("x", now), cartdom.ErrEntryNotFound)
	assert.ErrorIs(t, c.Decrease("x", now), cartdom.ErrEntryNotFound)
}

func TestRemove_IgnoresQuantity(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.Add(prod("a", 1), now))
	require.NoError(t, c.Increase("a", now))
	require.NoError(t, c.Increase("a", now))

	require.NoError(t, c.Remove("a", now))
	_, ok := c.Entry("a")
	assert.False(t, ok)

	assert.NoError(t, c.Remove("a", now))
}

func TestClear(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.AddMany([]productdom.Product{prod("a", 1), prod("b", 2)}, now))
	c.SelectAll()

	later := now.Add(time.Minute)
	c.Clear(later)

	assert.Empty(t, c.Entries)
	assert.Empty(t, c.SelectedEntries())
	assert.Equal(t, later, c.UpdatedAt)
}

func TestSelection(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.AddMany([]productdom.Product{prod("a", 1), prod("b", 2), prod("c", 3)}, now))

	on, err := c.ToggleSelected("b")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, c.IsSelected("b"))

	_, err = c.ToggleSelected("zzz")
	assert.ErrorIs(t, err, cartdom.ErrEntryNotFound)

	c.SelectAll()
	assert.Len(t, c.SelectedEntries(), 3)

	require.NoError(t, c.Remove("a", now))
	sel := c.SelectedEntries()
	require.Len(t, sel, 2)
	assert.Equal(t, "b", sel[0].Product.ID)
	assert.Equal(t, "c", sel[1].Product.ID)

	c.SelectAll()
	assert.Empty(t, c.SelectedEntries(), "select all on a fully selected cart clears it")
}

func TestRemoveMany(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.AddMany([]productdom.Product{prod("a", 1), prod("b", 2), prod("c", 3)}, now))

	require.NoError(t, c.RemoveMany([]string{"a", "c"}, now))
	require.Len(t, c.Entries, 1)
	assert.Equal(t, "b", c.Entries[0].Product.ID)
}

func TestClone_IsIndependent(t *testing.T) {
	c := cartdom.NewCart(now)
	require.NoError(t, c.Add(prod("a", 1), now))
	_, _ = c.ToggleSelected("a")

	cp := c.Clone()
	require.NoError(t, c.Increase("a", now))
	_, _ = c.ToggleSelected("a")

	e, _ := cp.Entry("a")
	assert.Equal(t, 1, e.Quantity)
	assert.True(t, cp.IsSelected("a"))
}

func TestRandomSequences_KeepQuantityPositiveAndUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d"}

	for run := 0; run < 200; run++ {
		c := cartdom.NewCart(now)
		for step := 0; step < 60; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(4) {
			case 0:
				_ = c.Add(prod(id, 1), now)
			case 1:
				_ = c.Remove(id, now)
			case 2:
				_ = c.Increase(id, now)
			case 3:
				_ = c.Decrease(id, now)
			}

			seen := map[string]bool{}
			for _, e := range c.Entries {
				require.GreaterOrEqual(t, e.Quantity, 1)
				require.False(t, seen[e.Product.ID], "duplicate entry for %s", e.Product.ID)
				seen[e.Product.ID] = true
			}
		}
	}
}
