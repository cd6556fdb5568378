package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) String() string {
	return string(s)
}

// DefaultTaxRate is the Dutch BTW rate frozen into an order at creation time.
// Historical orders are unaffected by later rate changes.
var DefaultTaxRate = decimal.RequireFromString("0.21")

// DefaultShippingCost is the flat Dutch shipping fee.
var DefaultShippingCost = decimal.RequireFromString("4.95")

type Order struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	OrderNumber         string          `json:"order_number" db:"order_number"`
	UserID              uuid.UUID       `json:"user_id" db:"user_id"`
	CustomerEmail       string          `json:"customer_email" db:"customer_email"`
	CustomerName        string          `json:"customer_name" db:"customer_name"`
	CustomerPhone       string          `json:"customer_phone" db:"customer_phone"`
	Status              Status          `json:"status" db:"status"`
	PaymentStatus       PaymentStatus   `json:"payment_status" db:"payment_status"`
	ShippingAddressText string          `json:"shipping_address_text" db:"shipping_address_text"`
	BillingAddressText  string          `json:"billing_address_text" db:"billing_address_text"`
	Subtotal            decimal.Decimal `json:"subtotal" db:"subtotal"`
	TaxRate             decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	TaxAmount           decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	ShippingCost        decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	TotalAmount         decimal.Decimal `json:"total_amount" db:"total_amount"`
	PaymentMethod       string          `json:"payment_method" db:"payment_method"`
	IdealBank           string          `json:"ideal_bank" db:"ideal_bank"`
	PaymentReference    string          `json:"payment_reference" db:"payment_reference"`
	CustomerNotes       string          `json:"customer_notes" db:"customer_notes"`
	Items               []Item          `json:"items" db:"-"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// Item is an immutable snapshot of a product at order creation time.
// Later price or name changes never alter historical orders.
type Item struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	ProductSKU  string          `json:"product_sku" db:"product_sku"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// CalculateTotals recomputes the monetary aggregates from the order items.
// Invariants: tax_amount = subtotal * tax_rate, total = subtotal + tax + shipping.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	o.Subtotal = subtotal
	o.TaxAmount = o.Subtotal.Mul(o.TaxRate).Round(2)
	o.TotalAmount = o.Subtotal.Add(o.TaxAmount).Add(o.ShippingCost)
}

// CanBeCancelled reports whether cancellation is still allowed.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

var statusDisplayNL = map[Status]string{
	StatusPending:    "In afwachting",
	StatusConfirmed:  "Bevestigd",
	StatusProcessing: "In behandeling",
	StatusShipped:    "Verzonden",
	StatusDelivered:  "Geleverd",
	StatusCancelled:  "Geannuleerd",
}

// StatusDisplayNL returns the Dutch customer-facing status label.
func (o *Order) StatusDisplayNL() string {
	if display, ok := statusDisplayNL[o.Status]; ok {
		return display
	}
	return string(o.Status)
}
