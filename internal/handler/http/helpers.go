package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/auth"
	"github.com/healclinics/shop-api/internal/cart"
	"github.com/healclinics/shop-api/internal/catalog"
	"github.com/healclinics/shop-api/internal/order"
	"github.com/healclinics/shop-api/internal/payment"
	"github.com/healclinics/shop-api/internal/pdok"
	"github.com/healclinics/shop-api/internal/post"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondValidationError renders every failing field, not just the first.
func respondValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:   "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return
	}
	log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		switch fieldErr.Tag() {
		case "required":
			details[fieldErr.Field()] = "This field is required"
		case "email":
			details[fieldErr.Field()] = "Must be a valid email address"
		case "min":
			details[fieldErr.Field()] = "Value is too short (minimum " + fieldErr.Param() + ")"
		case "max":
			details[fieldErr.Field()] = "Value is too long (maximum " + fieldErr.Param() + ")"
		case "eq":
			details[fieldErr.Field()] = "Must be " + fieldErr.Param()
		case "eqfield":
			details[fieldErr.Field()] = "Must match " + fieldErr.Param()
		case "oneof":
			details[fieldErr.Field()] = "Must be one of: " + fieldErr.Param()
		case "required_if":
			details[fieldErr.Field()] = "This field is required for the chosen payment method"
		default:
			details[fieldErr.Field()] = "Invalid value (" + fieldErr.Tag() + ")"
		}
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, address.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, post.ErrNotFound),
		errors.Is(err, auth.ErrNotFound),
		errors.Is(err, pdok.ErrNotFound),
		errors.Is(err, payment.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, post.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrCartEmpty),
		errors.Is(err, order.ErrAddressNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, address.ErrInvalidPostcode):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrNotCancellable):
		return http.StatusConflict
	case errors.Is(err, pdok.ErrUnavailable),
		errors.Is(err, payment.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a request body strictly, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
