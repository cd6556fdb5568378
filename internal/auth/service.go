package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type RegisterInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*User, *TokenPair, error)
	// Refresh rotates the presented refresh token: the old jti is revoked and
	// a fresh pair is issued.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	GetUser(ctx context.Context, claims *Claims) (*User, error)
}

type service struct {
	repo   Repository
	tokens *TokenManager
}

func NewService(repo Repository, tokens *TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*User, *TokenPair, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		return nil, nil, fmt.Errorf("internal error hashing password: %w", err)
	}

	user := &User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hash),
	}

	createdID, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, nil, ErrEmailExists
		}
		log.Error().Err(err).Msg("Failed to create user")
		return nil, nil, fmt.Errorf("failed to save user: %w", err)
	}
	user.ID = createdID

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("email", user.Email).Msg("New user registered")

	return user, pair, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Str("email", user.Email).Msg("Token pair issued")

	return user, pair, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, jti, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := s.repo.GetRefreshToken(ctx, jti)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if stored.Revoked || stored.UserID != userID || time.Now().UTC().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user for refresh: %w", err)
	}

	if err := s.repo.RevokeRefreshToken(ctx, jti); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return pair, nil
}

func (s *service) GetUser(ctx context.Context, claims *Claims) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", claims.UserID, err)
	}

	return user, nil
}

func (s *service) issue(ctx context.Context, user *User) (*TokenPair, error) {
	pair, record, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.repo.StoreRefreshToken(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return pair, nil
}
