package address_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/address"
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
	poolConfig.MaxConns = 5

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

func truncateAddressTables(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE addresses, users RESTART IDENTITY CASCADE")
	require.NoError(tb, err, "failed to truncate address tables")
}

func seedUser(tb testing.TB, pool *pgxpool.Pool) uuid.UUID {
	tb.Helper()
	userID := uuid.Must(uuid.NewV4())
	_, err := pool.Exec(context.Background(),
		`INSERT INTO users (id, email, first_name, last_name, password_hash)
		 VALUES ($1, $2, 'Jan', 'de Vries', 'hashed')`,
		userID, fmt.Sprintf("jan.%s@example.com", userID))
	require.NoError(tb, err)
	return userID
}

func testAddress(userID uuid.UUID) *address.Address {
	return &address.Address{
		UserID:        userID,
		AddressType:   address.TypeShipping,
		FirstName:     "Jan",
		LastName:      "de Vries",
		StreetAddress: "Damstraat",
		HouseNumber:   "12",
		PostalCode:    "1012 NX",
		City:          "Amsterdam",
		Country:       "Nederland",
	}
}

// countDefaults returns how many of the user's addresses carry each default flag.
func countDefaults(tb testing.TB, pool *pgxpool.Pool, userID uuid.UUID) (shipping, billing int) {
	tb.Helper()
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FILTER (WHERE is_default_shipping), COUNT(*) FILTER (WHERE is_default_billing)
		 FROM addresses WHERE user_id = $1`, userID).Scan(&shipping, &billing)
	require.NoError(tb, err)
	return shipping, billing
}

func TestAddressRepository_DefaultShippingFlagFlips(t *testing.T) {
	repo := address.NewRepository(testDB)

	t.Cleanup(func() {
		truncateAddressTables(t, testDB)
	})

	userID := seedUser(t, testDB)

	first := testAddress(userID)
	first.IsDefaultShipping = true
	firstID, err := repo.Create(context.Background(), first)
	require.NoError(t, err)

	second := testAddress(userID)
	second.StreetAddress = "Kalverstraat"
	second.IsDefaultShipping = true
	secondID, err := repo.Create(context.Background(), second)
	require.NoError(t, err)

	// Creating a second default moves the flag, never duplicates it.
	shipping, _ := countDefaults(t, testDB, userID)
	require.Equal(t, 1, shipping)

	firstStored, err := repo.GetByID(context.Background(), userID, firstID)
	require.NoError(t, err)
	require.False(t, firstStored.IsDefaultShipping)

	secondStored, err := repo.GetByID(context.Background(), userID, secondID)
	require.NoError(t, err)
	require.True(t, secondStored.IsDefaultShipping)

	// Updating the first back to default clears the second again.
	firstStored.IsDefaultShipping = true
	require.NoError(t, repo.Update(context.Background(), firstStored))

	shipping, _ = countDefaults(t, testDB, userID)
	require.Equal(t, 1, shipping)

	secondStored, err = repo.GetByID(context.Background(), userID, secondID)
	require.NoError(t, err)
	require.False(t, secondStored.IsDefaultShipping)
}

func TestAddressRepository_DefaultFlagsIndependentPerKind(t *testing.T) {
	repo := address.NewRepository(testDB)

	t.Cleanup(func() {
		truncateAddressTables(t, testDB)
	})

	userID := seedUser(t, testDB)

	shippingAddr := testAddress(userID)
	shippingAddr.IsDefaultShipping = true
	_, err := repo.Create(context.Background(), shippingAddr)
	require.NoError(t, err)

	billingAddr := testAddress(userID)
	billingAddr.AddressType = address.TypeBilling
	billingAddr.IsDefaultBilling = true
	_, err = repo.Create(context.Background(), billingAddr)
	require.NoError(t, err)

	// A new default billing address leaves the shipping default untouched.
	shipping, billing := countDefaults(t, testDB, userID)
	require.Equal(t, 1, shipping)
	require.Equal(t, 1, billing)
}

func TestAddressRepository_DefaultsScopedPerUser(t *testing.T) {
	repo := address.NewRepository(testDB)

	t.Cleanup(func() {
		truncateAddressTables(t, testDB)
	})

	firstUser := seedUser(t, testDB)
	secondUser := seedUser(t, testDB)

	firstAddr := testAddress(firstUser)
	firstAddr.IsDefaultShipping = true
	_, err := repo.Create(context.Background(), firstAddr)
	require.NoError(t, err)

	secondAddr := testAddress(secondUser)
	secondAddr.IsDefaultShipping = true
	_, err = repo.Create(context.Background(), secondAddr)
	require.NoError(t, err)

	// Each user keeps an own default.
	shipping, _ := countDefaults(t, testDB, firstUser)
	require.Equal(t, 1, shipping)
	shipping, _ = countDefaults(t, testDB, secondUser)
	require.Equal(t, 1, shipping)
}

func TestAddressRepository_GetByID_OtherUserNotFound(t *testing.T) {
	repo := address.NewRepository(testDB)

	t.Cleanup(func() {
		truncateAddressTables(t, testDB)
	})

	ownerID := seedUser(t, testDB)
	strangerID := seedUser(t, testDB)

	addr := testAddress(ownerID)
	addrID, err := repo.Create(context.Background(), addr)
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), strangerID, addrID)
	require.ErrorIs(t, err, address.ErrNotFound)
}
