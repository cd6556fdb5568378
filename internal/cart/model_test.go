package cart_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/cart"
)

func TestCartTotals(t *testing.T) {
	c := &cart.Cart{
		Items: []cart.Item{
			{UnitPrice: decimal.RequireFromString("12.50"), Quantity: 2},
			{UnitPrice: decimal.RequireFromString("4.99"), Quantity: 3},
		},
	}

	require.Equal(t, 5, c.TotalItems())
	require.True(t, c.Subtotal().Equal(decimal.RequireFromString("39.97")), "subtotal = %s", c.Subtotal())
	require.True(t, c.TaxAmount().Equal(decimal.RequireFromString("8.39")), "tax = %s", c.TaxAmount())
	require.True(t, c.TotalWithTax().Equal(decimal.RequireFromString("48.36")), "total = %s", c.TotalWithTax())
}

func TestEmptyCart(t *testing.T) {
	c := &cart.Cart{}

	require.True(t, c.IsEmpty())
	require.Equal(t, 0, c.TotalItems())
	require.True(t, c.Subtotal().IsZero())
	require.True(t, c.TotalWithTax().IsZero())
}

func TestItemTotalPrice(t *testing.T) {
	item := cart.Item{UnitPrice: decimal.RequireFromString("9.95"), Quantity: 4}
	require.True(t, item.TotalPrice().Equal(decimal.RequireFromString("39.80")))
}
