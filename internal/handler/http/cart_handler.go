package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/healclinics/shop-api/internal/cart"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"omitempty,min=1,max=99"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"min=0,max=99"`
}

type CartResponse struct {
	Cart       *cart.Cart      `json:"cart"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Total      decimal.Decimal `json:"total"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{service: service, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Post("/cart", h.handleAddItem)
	router.Put("/cart/items/{id}", h.handleUpdateItem)
	router.Delete("/cart/items/{id}", h.handleDeleteItem)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userCart, err := h.service.GetCart(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get cart via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, toCartResponse(userCart))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload AddCartItemRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}
	if requestPayload.Quantity == 0 {
		requestPayload.Quantity = 1
	}

	userCart, productName, err := h.service.AddItem(r.Context(), claims.UserID, requestPayload.ProductID, requestPayload.Quantity)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, cart.ErrProductNotFound) {
			clientMessage = "Product not found or inactive"
		} else {
			log.Error().Err(err).Msg("Failed to add cart item via service")
			clientMessage = "Failed to add item to cart"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	log.Info().Str("product_name", productName).Stringer("user_id", claims.UserID).Msg("Cart item added")

	respondWithJSON(w, http.StatusOK, toCartResponse(userCart))
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload UpdateCartItemRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.service.UpdateItemQuantity(r.Context(), claims.UserID, itemID, requestPayload.Quantity); err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, cart.ErrItemNotFound) {
			clientMessage = "Cart item not found"
		} else {
			log.Error().Err(err).Msg("Failed to update cart item via service")
			clientMessage = "Failed to update cart item"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	userCart, err := h.service.GetCart(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload cart via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, toCartResponse(userCart))
}

func (h *CartHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	itemID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	productName, err := h.service.DeleteItem(r.Context(), claims.UserID, itemID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, cart.ErrItemNotFound) {
			clientMessage = "Cart item not found"
		} else {
			log.Error().Err(err).Msg("Failed to delete cart item via service")
			clientMessage = "Failed to delete cart item"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": productName + " verwijderd uit winkelwagen",
	})
}

func toCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{
		Cart:       c,
		TotalItems: c.TotalItems(),
		Subtotal:   c.Subtotal(),
		TaxAmount:  c.TaxAmount(),
		Total:      c.TotalWithTax(),
	}
}
