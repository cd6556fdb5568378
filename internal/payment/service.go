package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/order"
)

var ErrOrderNotFound = errors.New("no order for payment reference")

// Notifier delivers order confirmations. The reconciliation service calls it
// at most once per order, on the transition to paid.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
}

type logNotifier struct{}

// NewLogNotifier returns a Notifier that only logs. Stand-in until the mail
// integration lands.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) SendOrderConfirmation(_ context.Context, o *order.Order) error {
	log.Info().Str("order_number", o.OrderNumber).Str("customer_email", o.CustomerEmail).
		Msg("Order confirmation notification")
	return nil
}

type Service interface {
	// StartPayment registers the order with the provider and returns the URL
	// the customer is redirected to. Called after the checkout transaction has
	// committed; never inside it.
	StartPayment(ctx context.Context, o *order.Order) (string, error)
	// ProcessWebhook applies a provider status notification to the referenced
	// order. Replays of an already-applied status are no-ops: providers may
	// redeliver notifications.
	ProcessWebhook(ctx context.Context, providerPaymentID string) error
	// ListTransactions returns the provider transaction history for an order,
	// newest first.
	ListTransactions(ctx context.Context, orderID uuid.UUID) ([]Transaction, error)
}

type service struct {
	provider     Provider
	transactions Repository
	orders       order.Repository
	notifier     Notifier
}

func NewService(provider Provider, transactions Repository, orders order.Repository, notifier Notifier) Service {
	return &service{provider: provider, transactions: transactions, orders: orders, notifier: notifier}
}

func (s *service) StartPayment(ctx context.Context, o *order.Order) (string, error) {
	providerPayment, err := s.provider.CreatePayment(ctx, o)
	if err != nil {
		log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("Failed to create provider payment")
		return "", fmt.Errorf("failed to create payment for order '%s': %w", o.OrderNumber, err)
	}

	if err := s.orders.SetPaymentReference(ctx, o.ID, providerPayment.ID); err != nil {
		return "", fmt.Errorf("failed to store payment reference for order '%s': %w", o.OrderNumber, err)
	}
	o.PaymentReference = providerPayment.ID

	tx := &Transaction{
		OrderID:           o.ID,
		ProviderPaymentID: providerPayment.ID,
		Status:            providerPayment.Status,
		Amount:            o.TotalAmount,
		Method:            o.PaymentMethod,
		WebhookPayload:    map[string]any{},
	}
	if err := s.transactions.Upsert(ctx, tx); err != nil {
		return "", fmt.Errorf("failed to record payment transaction for order '%s': %w", o.OrderNumber, err)
	}

	log.Info().Str("payment_id", providerPayment.ID).Str("order_number", o.OrderNumber).
		Msg("Provider payment created")

	return providerPayment.CheckoutURL, nil
}

func (s *service) ListTransactions(ctx context.Context, orderID uuid.UUID) ([]Transaction, error) {
	transactions, err := s.transactions.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment transactions for order '%s': %w", orderID, err)
	}
	return transactions, nil
}

func (s *service) ProcessWebhook(ctx context.Context, providerPaymentID string) error {
	// Re-fetch the payment from the provider rather than trusting the
	// notification body; the webhook only carries the payment id.
	providerPayment, err := s.provider.GetPayment(ctx, providerPaymentID)
	if err != nil {
		log.Error().Err(err).Str("payment_id", providerPaymentID).Msg("Failed to fetch provider payment")
		return fmt.Errorf("failed to fetch payment '%s': %w", providerPaymentID, err)
	}

	o, err := s.orders.GetByPaymentReference(ctx, providerPaymentID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			log.Warn().Str("payment_id", providerPaymentID).Msg("Webhook for unknown payment reference")
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to resolve order for payment '%s': %w", providerPaymentID, err)
	}

	// Skip the write when an identical status is already on record; the
	// provider redelivers webhooks verbatim until it sees a 200.
	existing, err := s.transactions.GetByProviderPaymentID(ctx, providerPaymentID)
	if err != nil && !errors.Is(err, ErrTransactionNotFound) {
		return fmt.Errorf("failed to look up payment transaction '%s': %w", providerPaymentID, err)
	}
	if existing == nil || existing.Status != providerPayment.Status {
		tx := &Transaction{
			OrderID:           o.ID,
			ProviderPaymentID: providerPayment.ID,
			Status:            providerPayment.Status,
			Amount:            o.TotalAmount,
			Method:            providerPayment.Method,
			WebhookPayload:    providerPayment.Raw,
		}
		if err := s.transactions.Upsert(ctx, tx); err != nil {
			return fmt.Errorf("failed to record payment transaction '%s': %w", providerPaymentID, err)
		}
	}

	switch providerPayment.Status {
	case ProviderStatusPaid:
		if o.PaymentStatus == order.PaymentPaid {
			// Redelivered notification for an already-paid order.
			log.Info().Str("payment_id", providerPaymentID).Str("order_number", o.OrderNumber).
				Msg("Duplicate paid notification ignored")
			return nil
		}
		if err := s.orders.UpdateStatuses(ctx, o.ID, order.StatusProcessing, order.PaymentPaid); err != nil {
			return fmt.Errorf("failed to mark order '%s' paid: %w", o.OrderNumber, err)
		}
		o.Status = order.StatusProcessing
		o.PaymentStatus = order.PaymentPaid

		if err := s.notifier.SendOrderConfirmation(ctx, o); err != nil {
			// Notification failure does not undo the reconciliation.
			log.Error().Err(err).Str("order_number", o.OrderNumber).Msg("Failed to send order confirmation")
		}

		log.Info().Str("payment_id", providerPaymentID).Str("order_number", o.OrderNumber).
			Msg("Order reconciled as paid")

	case ProviderStatusFailed, ProviderStatusExpired, ProviderStatusCancelled:
		if o.PaymentStatus == order.PaymentFailed {
			return nil
		}
		if err := s.orders.UpdateStatuses(ctx, o.ID, order.StatusCancelled, order.PaymentFailed); err != nil {
			return fmt.Errorf("failed to mark order '%s' failed: %w", o.OrderNumber, err)
		}

		log.Info().Str("payment_id", providerPaymentID).Str("order_number", o.OrderNumber).
			Str("provider_status", providerPayment.Status).Msg("Order reconciled as failed")

	default:
		// open/pending: transaction recorded, order untouched.
		log.Debug().Str("payment_id", providerPaymentID).Str("provider_status", providerPayment.Status).
			Msg("Webhook with non-final payment status")
	}

	return nil
}
