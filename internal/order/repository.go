package order

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
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("order not found")
	ErrCartEmpty = errors.New("cart is empty")
)

// numberAttempts bounds retries when two checkouts race for the same daily sequence.
const numberAttempts = 3

type Repository interface {
	// CreateFromCart atomically converts the cart into an order: snapshot the
	// cart lines as order items, recompute totals, and empty the cart. Any
	// failure rolls back the whole conversion.
	CreateFromCart(ctx context.Context, o *Order, cartID uuid.UUID) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByPaymentReference(ctx context.Context, reference string) (*Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error
	UpdateStatuses(ctx context.Context, orderID uuid.UUID, status Status, paymentStatus PaymentStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateFromCart(ctx context.Context, o *Order, cartID uuid.UUID) (uuid.UUID, error) {
	// The order number carries a daily sequence guarded by the unique
	// constraint on order_number. Losing the race aborts the transaction,
	// so the whole conversion retries with a fresh sequence.
	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		orderID, err := r.createFromCartOnce(ctx, o, cartID)
		if err == nil {
			return orderID, nil
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == "orders_order_number_key" {
			log.Warn().Str("order_number", o.OrderNumber).Int("attempt", attempt+1).Msg("Order number collision, retrying")
			lastErr = err
			continue
		}
		return uuid.Nil, err
	}
	return uuid.Nil, fmt.Errorf("repository: failed to reserve order number after %d attempts: %w", numberAttempts, lastErr)
}

func (r *postgresRepository) createFromCartOnce(ctx context.Context, o *Order, cartID uuid.UUID) (orderID uuid.UUID, err error) {
	if o.ID == uuid.Nil {
		genID, genErr := uuid.NewV4()
		if genErr != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = genID
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	// Lock the cart row so a second concurrent checkout of the same cart
	// blocks here and then sees an already emptied cart.
	var lockedCartID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&lockedCartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrCartEmpty
		}
		return uuid.Nil, fmt.Errorf("repository: failed to lock cart %s: %w", cartID, err)
	}

	items, err := snapshotCartItems(ctx, tx, cartID, o.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if len(items) == 0 {
		return uuid.Nil, ErrCartEmpty
	}
	o.Items = items
	o.CalculateTotals()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.Status = StatusPending
	o.PaymentStatus = PaymentPending
	o.OrderNumber, err = nextOrderNumber(ctx, tx, now)
	if err != nil {
		return uuid.Nil, err
	}

	queryOrder := `
		INSERT INTO orders (id, order_number, user_id, customer_email, customer_name, customer_phone,
			status, payment_status, shipping_address_text, billing_address_text,
			subtotal, tax_rate, tax_amount, shipping_cost, total_amount,
			payment_method, ideal_bank, payment_reference, customer_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID, o.OrderNumber, o.UserID, o.CustomerEmail, o.CustomerName, o.CustomerPhone,
		string(o.Status), string(o.PaymentStatus), o.ShippingAddressText, o.BillingAddressText,
		o.Subtotal, o.TaxRate, o.TaxAmount, o.ShippingCost, o.TotalAmount,
		o.PaymentMethod, o.IdealBank, o.PaymentReference, o.CustomerNotes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_sku,
			unit_price, quantity, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for i := range o.Items {
		item := &o.Items[i]
		_, err = tx.Exec(ctx, queryItem,
			item.ID, o.ID, item.ProductID, item.ProductName, item.ProductSKU,
			item.UnitPrice, item.Quantity, item.TotalPrice, item.CreatedAt,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	_, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("repository: failed to clear cart %s: %w", cartID, err)
	}

	return o.ID, nil
}

// snapshotCartItems copies the cart lines into order items, freezing product
// name, SKU and unit price at conversion time.
func snapshotCartItems(ctx context.Context, tx pgx.Tx, cartID, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT ci.product_id, p.name, p.sku, p.price, ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at
	`
	rows, err := tx.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.ProductSKU, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item for cart %s: %w", cartID, err)
		}

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return nil, fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
		}
		item.ID = itemID
		item.OrderID = orderID
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		item.CreatedAt = now
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items for cart %s: %w", cartID, err)
	}

	return items, nil
}

// nextOrderNumber computes (highest existing sequence for today's prefix) + 1
// inside the caller's transaction. The unique constraint on order_number
// catches concurrent writers; CreateFromCart retries on that conflict.
func nextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	prefix := NumberPrefix(now)

	var lastNumber *string
	query := `SELECT MAX(order_number) FROM orders WHERE order_number LIKE $1 || '%'`
	if err := tx.QueryRow(ctx, query, prefix).Scan(&lastNumber); err != nil {
		return "", fmt.Errorf("repository: failed to look up last order number: %w", err)
	}

	sequence := 1
	if lastNumber != nil && len(*lastNumber) > len(prefix) {
		var lastSeq int
		if _, err := fmt.Sscanf((*lastNumber)[len(prefix):], "%d", &lastSeq); err == nil {
			sequence = lastSeq + 1
		}
	}

	return FormatNumber(now, sequence), nil
}

const orderColumns = `id, order_number, user_id, customer_email, customer_name, customer_phone,
		status, payment_status, shipping_address_text, billing_address_text,
		subtotal, tax_rate, tax_amount, shipping_cost, total_amount,
		payment_method, ideal_bank, payment_reference, customer_notes, created_at, updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerEmail, &o.CustomerName, &o.CustomerPhone,
		&o.Status, &o.PaymentStatus, &o.ShippingAddressText, &o.BillingAddressText,
		&o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.ShippingCost, &o.TotalAmount,
		&o.PaymentMethod, &o.IdealBank, &o.PaymentReference, &o.CustomerNotes, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) GetByPaymentReference(ctx context.Context, reference string) (*Order, error) {
	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE payment_reference = $1`, reference), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by payment reference %s: %w", reference, err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, product_sku, unit_price, quantity, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.UnitPrice, &item.Quantity, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order %s: %w", orderID, err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	ordersMap := make(map[uuid.UUID]*Order)
	var orderIDs []uuid.UUID

	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		o.Items = make([]Item, 0)
		ordersMap[o.ID] = &o
		orderIDs = append(orderIDs, o.ID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsQuery := `
		SELECT id, order_id, product_id, product_name, product_sku, unit_price, quantity, total_price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.ProductSKU, &item.UnitPrice, &item.Quantity, &item.TotalPrice, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item: %w", err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items: %w", err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		if o, ok := ordersMap[id]; ok {
			result = append(result, *o)
		}
	}

	return result, nil
}

func (r *postgresRepository) SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE orders SET payment_reference = $1, updated_at = $2 WHERE id = $3`,
		reference, time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to set payment reference for order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresRepository) UpdateStatuses(ctx context.Context, orderID uuid.UUID, status Status, paymentStatus PaymentStatus) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, payment_status = $2, updated_at = $3 WHERE id = $4`,
		string(status), string(paymentStatus), time.Now().UTC(), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to update order statuses for %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
