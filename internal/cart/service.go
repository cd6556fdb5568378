package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/catalog"
)

var ErrProductNotFound = errors.New("product not found or inactive")

type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Cart, string, error)
	// UpdateItemQuantity sets the line quantity; zero or below removes the line.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (string, error)
}

type service struct {
	repo     Repository
	products catalog.Repository
}

func NewService(repo Repository, products catalog.Repository) Service {
	return &service{repo: repo, products: products}
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	c, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to load cart")
		return nil, fmt.Errorf("failed to load cart for user '%s': %w", userID, err)
	}

	return c, nil
}

func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Cart, string, error) {
	if quantity < 1 {
		quantity = 1
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, "", ErrProductNotFound
		}
		return nil, "", fmt.Errorf("failed to resolve product '%s': %w", productID, err)
	}
	if !product.IsActive {
		return nil, "", ErrProductNotFound
	}

	c, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load cart for user '%s': %w", userID, err)
	}

	if err := s.repo.AddItem(ctx, c.ID, productID, quantity); err != nil {
		log.Error().Err(err).Stringer("cart_id", c.ID).Stringer("product_id", productID).Msg("Failed to add cart item")
		return nil, "", fmt.Errorf("failed to add item to cart: %w", err)
	}

	updated, err := s.repo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to reload cart for user '%s': %w", userID, err)
	}

	return updated, product.Name, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		_, err := s.DeleteItem(ctx, userID, itemID)
		return err
	}

	err := s.repo.UpdateItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("Failed to update cart item quantity")
		return fmt.Errorf("failed to update cart item '%s': %w", itemID, err)
	}

	return nil
}

func (s *service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (string, error) {
	productName, err := s.repo.DeleteItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return "", ErrItemNotFound
		}
		log.Error().Err(err).Stringer("item_id", itemID).Msg("Failed to delete cart item")
		return "", fmt.Errorf("failed to delete cart item '%s': %w", itemID, err)
	}

	return productName, nil
}
