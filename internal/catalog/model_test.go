package catalog_test

import (
	"strings"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/catalog"
)

func TestPriceExclVAT(t *testing.T) {
	p := &catalog.Product{Price: decimal.RequireFromString("12.10")}

	require.True(t, p.PriceExclVAT().Equal(decimal.RequireFromString("10.00")), "excl = %s", p.PriceExclVAT())
	require.True(t, p.VATAmount().Equal(decimal.RequireFromString("2.10")), "vat = %s", p.VATAmount())
}

func TestSalePercentage(t *testing.T) {
	original := decimal.RequireFromString("20.00")
	p := &catalog.Product{
		Price:         decimal.RequireFromString("15.00"),
		OriginalPrice: &original,
	}

	require.True(t, p.IsOnSale())
	require.Equal(t, 25, p.SalePercentage())
}

func TestNotOnSaleWithoutOriginalPrice(t *testing.T) {
	p := &catalog.Product{Price: decimal.RequireFromString("15.00")}

	require.False(t, p.IsOnSale())
	require.Equal(t, 0, p.SalePercentage())
}

func TestIsLowStock(t *testing.T) {
	p := &catalog.Product{Stock: 5, LowStockThreshold: 5}
	require.True(t, p.IsLowStock())

	p.Stock = 6
	require.False(t, p.IsLowStock())
}

func TestCategoryValid(t *testing.T) {
	require.True(t, catalog.CategoryManuka.Valid())
	require.False(t, catalog.Category("speelgoed").Valid())
}

func TestGenerateSKU(t *testing.T) {
	id := uuid.Must(uuid.FromString("a1b2c3d4-0000-0000-0000-000000000000"))

	sku := catalog.GenerateSKU(catalog.CategoryHoning, id)
	require.Equal(t, "HC-HON-A1B2C3D4", sku)

	generic := catalog.GenerateSKU("", id)
	require.True(t, strings.HasPrefix(generic, "HC-PRD-"))
}
