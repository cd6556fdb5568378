package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("product not found")
	ErrSKUExists = errors.New("product sku already exists")
)

// ListFilter narrows List results. Zero value lists every active product.
type ListFilter struct {
	Category     Category
	OnlyActive   bool
	OnlyFeatured bool
}

type Repository interface {
	Create(ctx context.Context, product *Product) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const productColumns = `id, name, description, short_description, sku, price, original_price,
		category, stock, low_stock_threshold, is_active, is_featured, created_at, updated_at`

func (r *postgresRepository) Create(ctx context.Context, product *Product) (uuid.UUID, error) {
	if product.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate product ID: %w", err)
		}
		product.ID = genID
	}
	if product.SKU == "" {
		product.SKU = GenerateSKU(product.Category, product.ID)
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `
		INSERT INTO products (id, name, description, short_description, sku, price, original_price,
			category, stock, low_stock_threshold, is_active, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := r.db.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.ShortDescription,
		product.SKU, product.Price, product.OriginalPrice, string(product.Category),
		product.Stock, product.LowStockThreshold, product.IsActive, product.IsFeatured,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrSKUExists
		}
		return uuid.Nil, fmt.Errorf("repository: failed to insert product: %w", err)
	}

	return product.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	var p Product
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.ShortDescription, &p.SKU, &p.Price,
		&p.OriginalPrice, &p.Category, &p.Stock, &p.LowStockThreshold,
		&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product by id %s: %w", id, err)
	}

	return &p, nil
}

func (r *postgresRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}

	if filter.OnlyActive {
		query += ` AND is_active = TRUE`
	}
	if filter.OnlyFeatured {
		query += ` AND is_featured = TRUE`
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	query += ` ORDER BY is_featured DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.ShortDescription, &p.SKU, &p.Price,
			&p.OriginalPrice, &p.Category, &p.Stock, &p.LowStockThreshold,
			&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating products: %w", err)
	}

	return products, nil
}
