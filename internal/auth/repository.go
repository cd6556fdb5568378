package auth

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
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("email already exists")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) (uuid.UUID, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	StoreRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, jti uuid.UUID) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, jti uuid.UUID) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) (uuid.UUID, error) {
	if user.ID == uuid.Nil {
		genID, err := uuid.NewV4()
		if err != nil {
			return uuid.Nil, fmt.Errorf("repository: failed to generate user ID: %w", err)
		}
		user.ID = genID
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, email, first_name, last_name, password_hash, is_staff, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.FirstName, user.LastName, user.PasswordHash,
		user.IsStaff, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return uuid.Nil, ErrEmailExists
		}
		return uuid.Nil, fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return user.ID, nil
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `SELECT id, email, first_name, last_name, password_hash, is_staff, created_at, updated_at
		FROM users WHERE id = $1`

	var u User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %s: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, email, first_name, last_name, password_hash, is_staff, created_at, updated_at
		FROM users WHERE email = $1`

	var u User
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsStaff, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email '%s': %w", email, err)
	}

	return &u, nil
}

func (r *postgresRepository) StoreRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `INSERT INTO refresh_tokens (jti, user_id, expires_at, revoked, created_at)
		VALUES ($1, $2, $3, FALSE, $4)`

	_, err := r.db.Exec(ctx, query, token.JTI, token.UserID, token.ExpiresAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to store refresh token: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetRefreshToken(ctx context.Context, jti uuid.UUID) (*RefreshToken, error) {
	query := `SELECT jti, user_id, expires_at, revoked, created_at FROM refresh_tokens WHERE jti = $1`

	var t RefreshToken
	err := r.db.QueryRow(ctx, query, jti).Scan(&t.JTI, &t.UserID, &t.ExpiresAt, &t.Revoked, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select refresh token %s: %w", jti, err)
	}

	return &t, nil
}

func (r *postgresRepository) RevokeRefreshToken(ctx context.Context, jti uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE jti = $1`, jti)
	if err != nil {
		return fmt.Errorf("repository: failed to revoke refresh token %s: %w", jti, err)
	}

	return nil
}
