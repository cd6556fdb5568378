package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/cart"
)

var (
	ErrAddressNotFound = errors.New("checkout address not found")
	ErrNotCancellable  = errors.New("order can no longer be cancelled")
	ErrForbidden       = errors.New("order does not belong to caller")
)

// CheckoutInput carries the validated checkout payload plus the caller's identity.
type CheckoutInput struct {
	UserID            uuid.UUID
	CustomerEmail     string
	CustomerName      string
	CustomerPhone     string
	ShippingAddressID uuid.UUID
	BillingAddressID  uuid.UUID
	PaymentMethod     string
	IdealBank         string
	CustomerNotes     string
}

type Service interface {
	// Checkout converts the caller's cart into an order, all or nothing.
	// Preconditions are checked in order: non-empty cart, then address ownership.
	// The order is created as (pending, pending); payment confirmation arrives
	// exclusively through reconciliation, never at checkout time.
	Checkout(ctx context.Context, input CheckoutInput) (*Order, error)
	GetOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, isStaff bool) ([]Order, error)
	CancelOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*Order, error)
}

type service struct {
	repo      Repository
	carts     cart.Repository
	addresses address.Repository
}

func NewService(repo Repository, carts cart.Repository, addresses address.Repository) Service {
	return &service{repo: repo, carts: carts, addresses: addresses}
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*Order, error) {
	userCart, err := s.carts.GetOrCreateByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}
	if userCart.IsEmpty() {
		return nil, ErrCartEmpty
	}

	shipping, err := s.addresses.GetByID(ctx, input.UserID, input.ShippingAddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to resolve shipping address: %w", err)
	}
	billing, err := s.addresses.GetByID(ctx, input.UserID, input.BillingAddressID)
	if err != nil {
		if errors.Is(err, address.ErrNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to resolve billing address: %w", err)
	}

	o := &Order{
		UserID:              input.UserID,
		CustomerEmail:       input.CustomerEmail,
		CustomerName:        input.CustomerName,
		CustomerPhone:       input.CustomerPhone,
		ShippingAddressText: shipping.FullAddress(),
		BillingAddressText:  billing.FullAddress(),
		TaxRate:             DefaultTaxRate,
		ShippingCost:        DefaultShippingCost,
		PaymentMethod:       input.PaymentMethod,
		IdealBank:           input.IdealBank,
		CustomerNotes:       input.CustomerNotes,
	}

	orderID, err := s.repo.CreateFromCart(ctx, o, userCart.ID)
	if err != nil {
		if errors.Is(err, ErrCartEmpty) {
			return nil, ErrCartEmpty
		}
		log.Error().Err(err).Stringer("user_id", input.UserID).Msg("Failed to create order from cart")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Str("order_number", o.OrderNumber).
		Stringer("user_id", input.UserID).Msg("Order created")

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to get order")
		return nil, fmt.Errorf("failed to get order by id '%s': %w", orderID, err)
	}

	// Orders are owner-scoped unless the caller is staff.
	if !isStaff && o.UserID != userID {
		return nil, ErrNotFound
	}

	return o, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, isStaff bool) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if isStaff {
		orders, err = s.repo.ListAll(ctx)
	} else {
		orders, err = s.repo.ListByUserID(ctx, userID)
	}
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, nil
}

func (s *service) CancelOrder(ctx context.Context, userID uuid.UUID, isStaff bool, orderID uuid.UUID) (*Order, error) {
	o, err := s.GetOrder(ctx, userID, isStaff, orderID)
	if err != nil {
		return nil, err
	}

	if !o.CanBeCancelled() {
		return nil, ErrNotCancellable
	}

	if err := s.repo.UpdateStatuses(ctx, o.ID, StatusCancelled, o.PaymentStatus); err != nil {
		log.Error().Err(err).Stringer("order_id", o.ID).Msg("Failed to cancel order")
		return nil, fmt.Errorf("failed to cancel order '%s': %w", o.ID, err)
	}
	o.Status = StatusCancelled

	log.Info().Stringer("order_id", o.ID).Str("order_number", o.OrderNumber).Msg("Order cancelled")

	return o, nil
}
