package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("address not found")

type Repository interface {
	Create(ctx context.Context, addr *Address) (uuid.UUID, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Address, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Address, error)
	Update(ctx context.Context, addr *Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const addressColumns = `id, user_id, address_type, first_name, last_name, company, street_address,
		house_number, house_number_addition, postal_code, city, province, country,
		is_default_shipping, is_default_billing, created_at, updated_at`

func scanAddress(row pgx.Row, a *Address) error {
	return row.Scan(
		&a.ID, &a.UserID, &a.AddressType, &a.FirstName, &a.LastName, &a.Company,
		&a.StreetAddress, &a.HouseNumber, &a.HouseNumberAddition, &a.PostalCode,
		&a.City, &a.Province, &a.Country, &a.IsDefaultShipping, &a.IsDefaultBilling,
		&a.CreatedAt, &a.UpdatedAt,
	)
}

func (r *postgresRepository) Create(ctx context.Context, addr *Address) (addrID uuid.UUID, err error) {
	if addr.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate address ID: %w", genErr)
		}
		addr.ID = genID
	}

	now := time.Now().UTC()
	addr.CreatedAt = now
	addr.UpdatedAt = now

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("address_id", addr.ID).Msg("Failed to rollback address transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	// Default flags are unique per user and type: clear competitors first,
	// inside the same transaction as the write that sets them.
	if err = clearDefaultFlags(ctx, tx, addr.UserID, addr.ID, addr.IsDefaultShipping, addr.IsDefaultBilling); err != nil {
		return uuid.Nil, err
	}

	query := `
		INSERT INTO addresses (id, user_id, address_type, first_name, last_name, company,
			street_address, house_number, house_number_addition, postal_code, city, province,
			country, is_default_shipping, is_default_billing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.Exec(ctx, query,
		addr.ID, addr.UserID, string(addr.AddressType), addr.FirstName, addr.LastName,
		addr.Company, addr.StreetAddress, addr.HouseNumber, addr.HouseNumberAddition,
		addr.PostalCode, addr.City, addr.Province, addr.Country,
		addr.IsDefaultShipping, addr.IsDefaultBilling, addr.CreatedAt, addr.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert address: %w", err)
	}

	return addr.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`

	var a Address
	err := scanAddress(r.db.QueryRow(ctx, query, id, userID), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select address by id %s: %w", id, err)
	}

	return &a, nil
}

func (r *postgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1
		ORDER BY is_default_shipping DESC, is_default_billing DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query addresses for user %s: %w", userID, err)
	}
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		var a Address
		if err := scanAddress(rows, &a); err != nil {
			return nil, fmt.Errorf("repository: failed to scan address for user %s: %w", userID, err)
		}
		addresses = append(addresses, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating addresses for user %s: %w", userID, err)
	}

	return addresses, nil
}

func (r *postgresRepository) Update(ctx context.Context, addr *Address) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("address_id", addr.ID).Msg("Failed to rollback address transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	if err = clearDefaultFlags(ctx, tx, addr.UserID, addr.ID, addr.IsDefaultShipping, addr.IsDefaultBilling); err != nil {
		return err
	}

	query := `
		UPDATE addresses
		SET address_type = $1, first_name = $2, last_name = $3, company = $4,
			street_address = $5, house_number = $6, house_number_addition = $7,
			postal_code = $8, city = $9, province = $10, country = $11,
			is_default_shipping = $12, is_default_billing = $13, updated_at = $14
		WHERE id = $15 AND user_id = $16
	`
	cmdTag, err := tx.Exec(ctx, query,
		string(addr.AddressType), addr.FirstName, addr.LastName, addr.Company,
		addr.StreetAddress, addr.HouseNumber, addr.HouseNumberAddition,
		addr.PostalCode, addr.City, addr.Province, addr.Country,
		addr.IsDefaultShipping, addr.IsDefaultBilling, time.Now().UTC(),
		addr.ID, addr.UserID,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update address %s: %w", addr.ID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete address %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func clearDefaultFlags(ctx context.Context, tx pgx.Tx, userID, exceptID uuid.UUID, shipping, billing bool) error {
	if shipping {
		_, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default_shipping = FALSE WHERE user_id = $1 AND id <> $2 AND is_default_shipping`,
			userID, exceptID)
		if err != nil {
			return fmt.Errorf("repository: failed to clear default shipping flags: %w", err)
		}
	}
	if billing {
		_, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default_billing = FALSE WHERE user_id = $1 AND id <> $2 AND is_default_billing`,
			userID, exceptID)
		if err != nil {
			return fmt.Errorf("repository: failed to clear default billing flags: %w", err)
		}
	}
	return nil
}
