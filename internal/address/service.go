package address

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Dutch)

type Service interface {
	CreateAddress(ctx context.Context, addr *Address) (*Address, error)
	GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)
	UpdateAddress(ctx context.Context, addr *Address) error
	DeleteAddress(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateAddress(ctx context.Context, addr *Address) (*Address, error) {
	if err := normalize(addr); err != nil {
		return nil, err
	}

	createdID, err := s.repo.Create(ctx, addr)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", addr.UserID).Msg("Failed to create address")
		return nil, fmt.Errorf("failed to save address: %w", err)
	}

	addr.ID = createdID
	return addr, nil
}

func (s *service) GetAddress(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	addr, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", id).Msg("Failed to get address")
		return nil, fmt.Errorf("failed to get address by id '%s': %w", id, err)
	}

	return addr, nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	addresses, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to list addresses")
		return nil, fmt.Errorf("failed to list addresses for user '%s': %w", userID, err)
	}

	return addresses, nil
}

func (s *service) UpdateAddress(ctx context.Context, addr *Address) error {
	if err := normalize(addr); err != nil {
		return err
	}

	err := s.repo.Update(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", addr.ID).Msg("Failed to update address")
		return fmt.Errorf("failed to update address '%s': %w", addr.ID, err)
	}

	return nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("address_id", id).Msg("Failed to delete address")
		return fmt.Errorf("failed to delete address '%s': %w", id, err)
	}

	return nil
}

func normalize(addr *Address) error {
	canonical, err := CanonicalizePostcode(addr.PostalCode)
	if err != nil {
		return ErrInvalidPostcode
	}
	addr.PostalCode = canonical
	addr.City = titleCaser.String(strings.TrimSpace(addr.City))

	if addr.AddressType == "" {
		addr.AddressType = TypeShipping
	}
	if addr.Country == "" {
		addr.Country = "Nederland"
	}

	return nil
}
