package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("Failed to get product from repository")
		return nil, fmt.Errorf("failed to get product by id '%s': %w", id, err)
	}

	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return []Product{}, nil
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products from repository")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}
