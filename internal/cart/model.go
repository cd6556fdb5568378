package cart

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// taxRate is the Dutch BTW rate applied to cart totals.
var taxRate = decimal.NewFromFloat(0.21)

type Cart struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Items     []Item    `json:"items" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Item struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CartID      uuid.UUID       `json:"cart_id" db:"cart_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	ProductSKU  string          `json:"product_sku" db:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

func (i *Item) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.TotalPrice())
	}
	return subtotal
}

func (c *Cart) TaxAmount() decimal.Decimal {
	return c.Subtotal().Mul(taxRate).Round(2)
}

func (c *Cart) TotalWithTax() decimal.Decimal {
	return c.Subtotal().Add(c.TaxAmount())
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
