package checkout_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/checkout"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarize_Example(t *testing.T) {
	s := checkout.Summarize([]checkout.Line{
		{Price: d("100"), Quantity: 2},
		{Price: d("50"), Quantity: 1},
	})

	assert.True(t, s.Subtotal.Equal(d("250")))
	assert.True(t, s.Shipping.Equal(d("50")))
	assert.True(t, s.Tax.Equal(d("30")))
	assert.True(t, s.Total.Equal(d("330")))
	assert.Equal(t, 3, s.ItemCount)
}

func TestSummarize_Empty(t *testing.T) {
	s := checkout.Summarize(nil)

	assert.True(t, s.Subtotal.IsZero())
	assert.True(t, s.Shipping.IsZero())
	assert.True(t, s.Tax.IsZero())
	assert.True(t, s.Total.IsZero())
	assert.Equal(t, 0, s.ItemCount)
}

func TestSummarize_DefaultsQuantityAndCoercesPrice(t *testing.T) {
	s := checkout.Summarize([]checkout.Line{
		checkout.LineFromString("not a price", 3),
		checkout.LineFromString("20", 0),
	})

	assert.Equal(t, 4, s.ItemCount)
	assert.True(t, s.Subtotal.Equal(d("20")))
	assert.True(t, s.Total.Equal(d("72.4")))
}

func TestSummarize_OnlyFreeItemsHasNoShipping(t *testing.T) {
	s := checkout.Summarize([]checkout.Line{{Price: decimal.Zero, Quantity: 2}})
	assert.True(t, s.Shipping.IsZero())
	assert.Equal(t, 2, s.ItemCount)
}

func TestSummarize_Idempotent(t *testing.T) {
	lines := []checkout.Line{{Price: d("19.99"), Quantity: 3}, {Price: d("0.01"), Quantity: 7}}
	a := checkout.Summarize(lines)
	b := checkout.Summarize(lines)

	assert.True(t, a.Total.Equal(b.Total))
	assert.Equal(t, a.Total.String(), b.Total.String())
}

func TestSelectQuantity(t *testing.T) {
	q, err := checkout.SelectQuantity(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, q)

	_, err = checkout.SelectQuantity(0, 3)
	assert.ErrorIs(t, err, checkout.ErrInvalidQuantity)

	_, err = checkout.SelectQuantity(4, 3)
	assert.ErrorIs(t, err, checkout.ErrQuantityOutOfStock)

	_, err = checkout.SelectQuantity(1, 0)
	assert.ErrorIs(t, err, checkout.ErrQuantityOutOfStock)
}
