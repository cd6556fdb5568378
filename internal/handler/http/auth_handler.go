package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/auth"
)

type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	FirstName       string `json:"first_name" validate:"required,min=2"`
	LastName        string `json:"last_name" validate:"required,min=2"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	User   UserResponse    `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

type AuthHandler struct {
	service  auth.Service
	validate *validator.Validate
}

func NewAuthHandler(service auth.Service) *AuthHandler {
	return &AuthHandler{service: service, validate: validator.New()}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router) {
	router.Post("/register", h.handleRegister)
	router.Post("/token", h.handleToken)
	router.Post("/token/refresh", h.handleRefresh)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode register payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	user, tokens, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:     requestPayload.Email,
		FirstName: requestPayload.FirstName,
		LastName:  requestPayload.LastName,
		Password:  requestPayload.Password,
	})
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, auth.ErrEmailExists) {
			clientMessage = "Email already exists"
		} else {
			log.Error().Err(err).Msg("Failed to register user via service")
			clientMessage = "Failed to register user"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, AuthResponse{User: toUserResponse(user), Tokens: tokens})
}

func (h *AuthHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	var requestPayload TokenRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	user, tokens, err := h.service.Login(r.Context(), requestPayload.Email, requestPayload.Password)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, auth.ErrInvalidCredentials) {
			clientMessage = "Invalid email or password"
		} else {
			log.Error().Err(err).Msg("Failed to issue tokens via service")
			clientMessage = "Failed to issue tokens"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, AuthResponse{User: toUserResponse(user), Tokens: tokens})
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var requestPayload RefreshRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), requestPayload.Refresh)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, auth.ErrInvalidToken) {
			clientMessage = "Invalid or expired refresh token"
		} else {
			log.Error().Err(err).Msg("Failed to refresh tokens via service")
			clientMessage = "Failed to refresh tokens"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]*auth.TokenPair{"tokens": tokens})
}

func toUserResponse(user *auth.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsStaff:   user.IsStaff,
		CreatedAt: user.CreatedAt,
	}
}
