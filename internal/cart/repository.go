package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
)

type Repository interface {
	// GetOrCreateByUserID returns the user's cart, creating an empty one if missing.
	GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)
	// AddItem inserts a new line or increments the quantity of an existing one.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (string, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	var c Cart

	query := `SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		cartID, genErr := uuid.NewV4()
		if genErr != nil {
			return nil, fmt.Errorf("repository: failed to generate cart ID: %w", genErr)
		}

		now := time.Now().UTC()
		insert := `
			INSERT INTO carts (id, user_id, created_at, updated_at)
			VALUES ($1, $2, $3, $3)
			ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
			RETURNING id, user_id, created_at, updated_at
		`
		err = r.db.QueryRow(ctx, insert, cartID, userID, now).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("repository: failed to get or create cart for user %s: %w", userID, err)
	}

	items, err := r.loadItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items

	return &c, nil
}

// loadItems joins products so line prices always reflect the live catalog.
func (r *postgresRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]Item, error) {
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, p.name, p.sku, p.price, ci.quantity, ci.created_at, ci.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at
	`
	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.UnitPrice, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item for cart %s: %w", cartID, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items for cart %s: %w", cartID, err)
	}

	return items, nil
}

func (r *postgresRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	itemID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("repository: failed to generate cart item ID: %w", err)
	}

	now := time.Now().UTC()

	// One row per (cart, product): an existing line gets its quantity bumped.
	query := `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.Exec(ctx, query, itemID, cartID, productID, quantity, now)
	if err != nil {
		return fmt.Errorf("repository: failed to add item to cart %s: %w", cartID, err)
	}

	return nil
}

func (r *postgresRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items ci
		SET quantity = $1, updated_at = $2
		FROM carts c
		WHERE ci.id = $3 AND ci.cart_id = c.id AND c.user_id = $4
	`
	cmdTag, err := r.db.Exec(ctx, query, quantity, time.Now().UTC(), itemID, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to update cart item %s: %w", itemID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (r *postgresRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (string, error) {
	query := `
		DELETE FROM cart_items ci
		USING carts c, products p
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2 AND p.id = ci.product_id
		RETURNING p.name
	`
	var productName string
	err := r.db.QueryRow(ctx, query, itemID, userID).Scan(&productName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrItemNotFound
		}
		return "", fmt.Errorf("repository: failed to delete cart item %s: %w", itemID, err)
	}

	return productName, nil
}
