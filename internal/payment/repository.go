package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTransactionNotFound = errors.New("payment transaction not found")

type Repository interface {
	// Upsert records the provider payment state, keyed by provider payment id.
	Upsert(ctx context.Context, tx *Transaction) error
	GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*Transaction, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Upsert(ctx context.Context, t *Transaction) error {
	if t.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate transaction ID: %w", err)
		}
		t.ID = genID
	}

	payload, err := json.Marshal(t.WebhookPayload)
	if err != nil {
		return fmt.Errorf("repository: failed to marshal webhook payload: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO payment_transactions (id, order_id, provider_payment_id, status, amount, method, webhook_payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (provider_payment_id)
		DO UPDATE SET status = EXCLUDED.status, webhook_payload = EXCLUDED.webhook_payload, updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.Exec(ctx, query,
		t.ID, t.OrderID, t.ProviderPaymentID, t.Status, t.Amount, t.Method, payload, now)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert payment transaction %s: %w", t.ProviderPaymentID, err)
	}

	return nil
}

func (r *postgresRepository) GetByProviderPaymentID(ctx context.Context, providerPaymentID string) (*Transaction, error) {
	query := `
		SELECT id, order_id, provider_payment_id, status, amount, method, webhook_payload, created_at, updated_at
		FROM payment_transactions
		WHERE provider_payment_id = $1
	`
	var (
		t       Transaction
		payload []byte
	)
	err := r.db.QueryRow(ctx, query, providerPaymentID).Scan(
		&t.ID, &t.OrderID, &t.ProviderPaymentID, &t.Status, &t.Amount, &t.Method,
		&payload, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("repository: failed to select payment transaction %s: %w", providerPaymentID, err)
	}

	if err := json.Unmarshal(payload, &t.WebhookPayload); err != nil {
		return nil, fmt.Errorf("repository: failed to unmarshal webhook payload for %s: %w", providerPaymentID, err)
	}

	return &t, nil
}

func (r *postgresRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]Transaction, error) {
	query := `
		SELECT id, order_id, provider_payment_id, status, amount, method, webhook_payload, created_at, updated_at
		FROM payment_transactions
		WHERE order_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query payment transactions for order %s: %w", orderID, err)
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		var (
			t       Transaction
			payload []byte
		)
		err := rows.Scan(&t.ID, &t.OrderID, &t.ProviderPaymentID, &t.Status, &t.Amount,
			&t.Method, &payload, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan payment transaction: %w", err)
		}
		if err := json.Unmarshal(payload, &t.WebhookPayload); err != nil {
			return nil, fmt.Errorf("repository: failed to unmarshal webhook payload: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating payment transactions: %w", err)
	}

	return transactions, nil
}
