package order_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/order"
)

func TestCalculateTotals(t *testing.T) {
	o := &order.Order{
		TaxRate:      decimal.RequireFromString("0.21"),
		ShippingCost: decimal.RequireFromString("4.95"),
		Items: []order.Item{
			{UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2, TotalPrice: decimal.RequireFromString("20.00")},
			{UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1, TotalPrice: decimal.RequireFromString("5.00")},
		},
	}

	o.CalculateTotals()

	require.True(t, o.Subtotal.Equal(decimal.RequireFromString("25.00")), "subtotal = %s", o.Subtotal)
	require.True(t, o.TaxAmount.Equal(decimal.RequireFromString("5.25")), "tax = %s", o.TaxAmount)
	require.True(t, o.TotalAmount.Equal(decimal.RequireFromString("35.20")), "total = %s", o.TotalAmount)
}

func TestCalculateTotalsEmptyOrder(t *testing.T) {
	o := &order.Order{
		TaxRate:      order.DefaultTaxRate,
		ShippingCost: order.DefaultShippingCost,
	}

	o.CalculateTotals()

	require.True(t, o.Subtotal.IsZero())
	require.True(t, o.TaxAmount.IsZero())
	require.True(t, o.TotalAmount.Equal(order.DefaultShippingCost))
}

func TestCanBeCancelled(t *testing.T) {
	tests := []struct {
		status order.Status
		want   bool
	}{
		{order.StatusPending, true},
		{order.StatusConfirmed, true},
		{order.StatusProcessing, false},
		{order.StatusShipped, false},
		{order.StatusDelivered, false},
		{order.StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := &order.Order{Status: tt.status}
			require.Equal(t, tt.want, o.CanBeCancelled())
		})
	}
}

func TestFormatNumber(t *testing.T) {
	day := time.Date(2025, time.March, 7, 12, 0, 0, 0, time.UTC)

	require.Equal(t, "HC20250307", order.NumberPrefix(day))
	require.Equal(t, "HC202503070001", order.FormatNumber(day, 1))
	require.Equal(t, "HC202503070042", order.FormatNumber(day, 42))
	require.Equal(t, "HC202503079999", order.FormatNumber(day, 9999))
}

func TestStatusDisplayNL(t *testing.T) {
	o := &order.Order{Status: order.StatusShipped}
	require.Equal(t, "Verzonden", o.StatusDisplayNL())

	o.Status = order.Status("unknown")
	require.Equal(t, "unknown", o.StatusDisplayNL())
}

func TestItemCount(t *testing.T) {
	o := &order.Order{Items: []order.Item{{Quantity: 2}, {Quantity: 3}}}
	require.Equal(t, 5, o.ItemCount())
}
