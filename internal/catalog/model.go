package catalog

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryHoning             Category = "honing"
	CategoryManuka             Category = "manuka"
	CategoryCupping            Category = "cupping"
	CategoryCuppingCups        Category = "cupping_cups"
	CategoryCuppingAccessories Category = "cupping_accessories"
	CategorySupplementen       Category = "supplementen"
	CategoryVitamines          Category = "vitamines"
	CategoryKruiden            Category = "kruiden"
	CategoryOlien              Category = "olien"
	CategoryMassage            Category = "massage"
	CategoryWellness           Category = "wellness"
	CategoryBoeken             Category = "boeken"
	CategoryApparatuur         Category = "apparatuur"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryHoning, CategoryManuka, CategoryCupping, CategoryCuppingCups,
		CategoryCuppingAccessories, CategorySupplementen, CategoryVitamines,
		CategoryKruiden, CategoryOlien, CategoryMassage, CategoryWellness,
		CategoryBoeken, CategoryApparatuur:
		return true
	}
	return false
}

// vatDivisor converts a VAT-inclusive price to an exclusive one (21% Dutch BTW).
var vatDivisor = decimal.NewFromFloat(1.21)

// Product prices are stored VAT-inclusive; the exclusive price is derived, never stored.
type Product struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Description       string           `json:"description" db:"description"`
	ShortDescription  string           `json:"short_description" db:"short_description"`
	SKU               string           `json:"sku" db:"sku"`
	Price             decimal.Decimal  `json:"price" db:"price"`
	OriginalPrice     *decimal.Decimal `json:"original_price,omitempty" db:"original_price"`
	Category          Category         `json:"category" db:"category"`
	Stock             int              `json:"stock" db:"stock"`
	LowStockThreshold int              `json:"low_stock_threshold" db:"low_stock_threshold"`
	IsActive          bool             `json:"is_active" db:"is_active"`
	IsFeatured        bool             `json:"is_featured" db:"is_featured"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at" db:"updated_at"`
}

func (p *Product) PriceExclVAT() decimal.Decimal {
	return p.Price.Div(vatDivisor).Round(2)
}

func (p *Product) VATAmount() decimal.Decimal {
	return p.Price.Sub(p.PriceExclVAT())
}

func (p *Product) IsOnSale() bool {
	return p.OriginalPrice != nil && p.OriginalPrice.GreaterThan(p.Price)
}

func (p *Product) SalePercentage() int {
	if !p.IsOnSale() {
		return 0
	}
	diff := p.OriginalPrice.Sub(p.Price)
	return int(diff.Div(*p.OriginalPrice).Mul(decimal.NewFromInt(100)).IntPart())
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// GenerateSKU builds "HC-<CAT3>-<8HEX>" from the category and a fresh UUID.
func GenerateSKU(category Category, id uuid.UUID) string {
	prefix := "PRD"
	if category != "" {
		prefix = strings.ToUpper(string(category))
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
	}
	unique := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return "HC-" + prefix + "-" + unique
}
