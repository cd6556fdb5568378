package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/payment"
)

type WebhookHandler struct {
	payments payment.Service
}

func NewWebhookHandler(payments payment.Service) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

func (h *WebhookHandler) RegisterRoutes(router chi.Router) {
	router.Post("/webhooks/mollie", h.handleMollieWebhook)
}

// handleMollieWebhook receives status-change notifications. Mollie sends a
// form-encoded body with only the payment id; the current status is fetched
// from the API, never taken from the notification.
func (h *WebhookHandler) handleMollieWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form payload")
		return
	}

	paymentID := r.PostFormValue("id")
	if paymentID == "" {
		respondWithError(w, http.StatusBadRequest, "Missing payment id")
		return
	}

	if err := h.payments.ProcessWebhook(r.Context(), paymentID); err != nil {
		statusCode := mapErrorToStatusCode(err)

		if errors.Is(err, payment.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Unknown payment reference")
			return
		}

		log.Error().Err(err).Str("payment_id", paymentID).Msg("Failed to process payment webhook")
		respondWithError(w, statusCode, "Failed to process webhook")
		return
	}

	w.WriteHeader(http.StatusOK)
}
