package order_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/order"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	dbHost := os.Getenv("DB_HOST_TEST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT_TEST")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbUser := os.Getenv("DB_USER_TEST")
	if dbUser == "" {
		dbUser = "postgres"
	}
	dbPassword := os.Getenv("DB_PASSWORD_TEST")
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	dbName := os.Getenv("DB_NAME_TEST")
	if dbName == "" {
		dbName = "healclinics_test"
	}
	dbSSLMode := os.Getenv("DB_SSLMODE_TEST")
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse test database connstr")
	}
	poolConfig.MaxConns = 10

	connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer connectCancel()

	testDB, err = pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		log.Fatal().Err(err).Str("db_host", dbHost).Str("db_port", dbPort).Msg("Failed to connect to test database")
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err = testDB.Ping(pingCtx); err != nil {
		testDB.Close()
		log.Fatal().Err(err).Msg("Failed to ping test database")
	}

	exitCode := m.Run()

	testDB.Close()
	os.Exit(exitCode)
}

func truncateOrderTables(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE order_items, orders, cart_items, carts, products, users RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate order tables")
}

// seedCart creates a user, a cart and two products with cart lines and
// returns the user and cart ids.
func seedCart(tb testing.TB, pool *pgxpool.Pool) (userID, cartID uuid.UUID) {
	tb.Helper()
	ctx := context.Background()

	userID = uuid.Must(uuid.NewV4())
	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, 'Jan', 'de Vries', 'hashed')`,
		userID, fmt.Sprintf("jan.%s@example.com", userID))
	require.NoError(tb, err)

	cartID = uuid.Must(uuid.NewV4())
	_, err = pool.Exec(ctx, `INSERT INTO carts (id, user_id) VALUES ($1, $2)`, cartID, userID)
	require.NoError(tb, err)

	products := []struct {
		name  string
		price string
		qty   int
	}{
		{"Manuka Honing MGO 400", "10.00", 2},
		{"Cupping Set Basis", "5.00", 1},
	}
	for _, p := range products {
		productID := uuid.Must(uuid.NewV4())
		_, err = pool.Exec(ctx,
			`INSERT INTO products (id, name, sku, price, category, stock)
			 VALUES ($1, $2, $3, $4, 'honing', 100)`,
			productID, p.name, fmt.Sprintf("HC-TST-%s", productID.String()[:8]), p.price)
		require.NoError(tb, err)

		_, err = pool.Exec(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, quantity) VALUES ($1, $2, $3, $4)`,
			uuid.Must(uuid.NewV4()), cartID, productID, p.qty)
		require.NoError(tb, err)
	}

	return userID, cartID
}

func TestOrderRepository_CreateFromCart(t *testing.T) {
	repo := order.NewRepository(testDB)

	t.Cleanup(func() {
		truncateOrderTables(t, testDB)
	})

	userID, cartID := seedCart(t, testDB)

	o := &order.Order{
		UserID:        userID,
		CustomerEmail: "jan@example.com",
		CustomerName:  "Jan de Vries",
		TaxRate:       order.DefaultTaxRate,
		ShippingCost:  order.DefaultShippingCost,
		PaymentMethod: "ideal",
	}

	orderID, err := repo.CreateFromCart(context.Background(), o, cartID)
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, orderID)
	require.True(t, strings.HasPrefix(o.OrderNumber, order.NumberPrefix(time.Now().UTC())))

	found, err := repo.GetByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Len(t, found.Items, 2)
	require.True(t, found.Subtotal.Equal(decimal.RequireFromString("25.00")), "subtotal = %s", found.Subtotal)
	require.Equal(t, order.StatusPending, found.Status)
	require.Equal(t, order.PaymentPending, found.PaymentStatus)

	// The conversion empties the cart in the same transaction.
	var remaining int
	err = testDB.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM cart_items WHERE cart_id = $1`, cartID).Scan(&remaining)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}

func TestOrderRepository_CreateFromCart_EmptyCart(t *testing.T) {
	repo := order.NewRepository(testDB)

	t.Cleanup(func() {
		truncateOrderTables(t, testDB)
	})

	userID, cartID := seedCart(t, testDB)
	_, err := testDB.Exec(context.Background(), `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	require.NoError(t, err)

	o := &order.Order{
		UserID:       userID,
		TaxRate:      order.DefaultTaxRate,
		ShippingCost: order.DefaultShippingCost,
	}

	_, err = repo.CreateFromCart(context.Background(), o, cartID)
	require.ErrorIs(t, err, order.ErrCartEmpty)
}

func TestOrderRepository_NumberSequenceContinues(t *testing.T) {
	repo := order.NewRepository(testDB)

	t.Cleanup(func() {
		truncateOrderTables(t, testDB)
	})

	userID, cartID := seedCart(t, testDB)

	now := time.Now().UTC()
	_, err := testDB.Exec(context.Background(),
		`INSERT INTO orders (id, order_number, user_id, customer_email, customer_name)
		 VALUES ($1, $2, $3, 'jan@example.com', 'Jan de Vries')`,
		uuid.Must(uuid.NewV4()), order.FormatNumber(now, 41), userID)
	require.NoError(t, err)

	o := &order.Order{
		UserID:        userID,
		CustomerEmail: "jan@example.com",
		CustomerName:  "Jan de Vries",
		TaxRate:       order.DefaultTaxRate,
		ShippingCost:  order.DefaultShippingCost,
	}

	_, err = repo.CreateFromCart(context.Background(), o, cartID)
	require.NoError(t, err)
	require.Equal(t, order.FormatNumber(now, 42), o.OrderNumber)
}

// Concurrent conversions race for the same daily sequence; losers hit the
// unique constraint on order_number and retry. Every checkout must still
// succeed with a distinct number. Three writers is the worst case the retry
// bound absorbs even when every attempt collides.
func TestOrderRepository_ConcurrentNumberGeneration(t *testing.T) {
	repo := order.NewRepository(testDB)

	t.Cleanup(func() {
		truncateOrderTables(t, testDB)
	})

	const checkouts = 3

	carts := make([]struct{ userID, cartID uuid.UUID }, checkouts)
	for i := range carts {
		carts[i].userID, carts[i].cartID = seedCart(t, testDB)
	}

	var wg sync.WaitGroup
	errs := make([]error, checkouts)
	numbers := make([]string, checkouts)

	for i := 0; i < checkouts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := &order.Order{
				UserID:        carts[i].userID,
				CustomerEmail: fmt.Sprintf("jan.%d@example.com", i),
				CustomerName:  "Jan de Vries",
				TaxRate:       order.DefaultTaxRate,
				ShippingCost:  order.DefaultShippingCost,
			}
			_, errs[i] = repo.CreateFromCart(context.Background(), o, carts[i].cartID)
			numbers[i] = o.OrderNumber
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, checkouts)
	for i := 0; i < checkouts; i++ {
		require.NoError(t, errs[i], "checkout %d failed", i)
		require.False(t, seen[numbers[i]], "order number %s assigned twice", numbers[i])
		seen[numbers[i]] = true
	}
}
