package payment

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

// Transaction mirrors an external provider payment attached to an order,
// including the raw notification payload for audit.
type Transaction struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	OrderID           uuid.UUID       `json:"order_id" db:"order_id"`
	ProviderPaymentID string          `json:"provider_payment_id" db:"provider_payment_id"`
	Status            string          `json:"status" db:"status"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Method            string          `json:"method" db:"method"`
	WebhookPayload    map[string]any  `json:"webhook_payload" db:"webhook_payload"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}
