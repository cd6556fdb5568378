package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/cart"
	"github.com/healclinics/shop-api/internal/order"
	"github.com/healclinics/shop-api/internal/payment"
)

// IdealBank is one entry of the static bank list shown during checkout.
type IdealBank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var idealBanks = []IdealBank{
	{Code: "ING", Name: "ING Bank"},
	{Code: "RABO", Name: "Rabobank"},
	{Code: "ABNAMRO", Name: "ABN AMRO"},
	{Code: "SNS", Name: "SNS Bank"},
	{Code: "ASNB", Name: "ASN Bank"},
	{Code: "BUNQ", Name: "bunq"},
	{Code: "KNAB", Name: "Knab"},
	{Code: "REGIOBANK", Name: "RegioBank"},
}

type CheckoutRequest struct {
	ShippingAddressID uuid.UUID `json:"shipping_address_id" validate:"required"`
	BillingAddressID  uuid.UUID `json:"billing_address_id" validate:"required"`
	PaymentMethod     string    `json:"payment_method" validate:"omitempty,oneof=ideal creditcard banktransfer"`
	IdealBank         string    `json:"ideal_bank" validate:"required_if=PaymentMethod ideal"`
	CustomerPhone     string    `json:"customer_phone" validate:"omitempty,max=20"`
	CustomerNotes     string    `json:"customer_notes" validate:"omitempty,max=500"`
	TermsAccepted     bool      `json:"terms_accepted" validate:"required,eq=true"`
}

type CheckoutInitResponse struct {
	Cart         CartResponse      `json:"cart"`
	Addresses    []address.Address `json:"addresses"`
	IdealBanks   []IdealBank       `json:"ideal_banks"`
	ShippingCost decimal.Decimal   `json:"shipping_cost"`
	TaxRate      decimal.Decimal   `json:"tax_rate"`
}

type CheckoutResponse struct {
	Order       *OrderResponse `json:"order"`
	CheckoutURL string         `json:"checkout_url,omitempty"`
}

type OrderResponse struct {
	*order.Order
	StatusDisplay string `json:"status_display"`
	ItemCount     int    `json:"item_count"`
}

// OrderDetailResponse adds the payment transaction history to the detail view.
type OrderDetailResponse struct {
	*OrderResponse
	Payments []payment.Transaction `json:"payments"`
}

type OrderHandler struct {
	orders    order.Service
	carts     cart.Service
	addresses address.Service
	payments  payment.Service
	validate  *validator.Validate
}

func NewOrderHandler(orders order.Service, carts cart.Service, addresses address.Service, payments payment.Service) *OrderHandler {
	return &OrderHandler{
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		payments:  payments,
		validate:  validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/checkout/init", h.handleCheckoutInit)
	router.Post("/checkout", h.handleCheckout)
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Post("/orders/{id}/cancel", h.handleCancelOrder)
}

func (h *OrderHandler) handleCheckoutInit(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userCart, err := h.carts.GetCart(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get cart for checkout init")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to prepare checkout")
		return
	}

	addresses, err := h.addresses.ListAddresses(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list addresses for checkout init")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to prepare checkout")
		return
	}
	if addresses == nil {
		addresses = []address.Address{}
	}

	respondWithJSON(w, http.StatusOK, CheckoutInitResponse{
		Cart:         toCartResponse(userCart),
		Addresses:    addresses,
		IdealBanks:   idealBanks,
		ShippingCost: order.DefaultShippingCost,
		TaxRate:      order.DefaultTaxRate,
	})
}

func (h *OrderHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload CheckoutRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode checkout payload")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}
	if requestPayload.PaymentMethod == "" {
		requestPayload.PaymentMethod = "ideal"
	}

	customerName := claims.FirstName + " " + claims.LastName

	createdOrder, err := h.orders.Checkout(r.Context(), order.CheckoutInput{
		UserID:            claims.UserID,
		CustomerEmail:     claims.Email,
		CustomerName:      customerName,
		CustomerPhone:     requestPayload.CustomerPhone,
		ShippingAddressID: requestPayload.ShippingAddressID,
		BillingAddressID:  requestPayload.BillingAddressID,
		PaymentMethod:     requestPayload.PaymentMethod,
		IdealBank:         requestPayload.IdealBank,
		CustomerNotes:     requestPayload.CustomerNotes,
	})
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, order.ErrCartEmpty):
			clientMessage = "Je winkelwagen is leeg"
		case errors.Is(err, order.ErrAddressNotFound):
			clientMessage = "Adres niet gevonden"
		default:
			log.Error().Err(err).Msg("Failed to process checkout via service")
			clientMessage = "Failed to process checkout"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	// The order is committed before the provider is contacted. A provider
	// failure leaves a pending order the customer can retry paying for.
	checkoutURL, err := h.payments.StartPayment(r.Context(), createdOrder)
	if err != nil {
		log.Error().Err(err).Str("order_number", createdOrder.OrderNumber).
			Msg("Order created but payment initiation failed")
	}

	respondWithJSON(w, http.StatusCreated, CheckoutResponse{
		Order:       toOrderResponse(createdOrder),
		CheckoutURL: checkoutURL,
	})
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), claims.UserID, claims.IsStaff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list orders")
		return
	}

	responsePayload := make([]*OrderResponse, 0, len(orders))
	for i := range orders {
		responsePayload = append(responsePayload, toOrderResponse(&orders[i]))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	foundOrder, err := h.orders.GetOrder(r.Context(), claims.UserID, claims.IsStaff, orderID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, order.ErrNotFound) {
			clientMessage = "Order not found"
		} else {
			log.Error().Err(err).Msg("Failed to get order via service")
			clientMessage = "Failed to get order"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	// A payment history failure does not hide the order itself.
	transactions, err := h.payments.ListTransactions(r.Context(), foundOrder.ID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", foundOrder.ID).Msg("Failed to list payment transactions")
		transactions = []payment.Transaction{}
	}

	respondWithJSON(w, http.StatusOK, OrderDetailResponse{
		OrderResponse: toOrderResponse(foundOrder),
		Payments:      transactions,
	})
}

func (h *OrderHandler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	cancelledOrder, err := h.orders.CancelOrder(r.Context(), claims.UserID, claims.IsStaff, orderID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, order.ErrNotFound):
			clientMessage = "Order not found"
		case errors.Is(err, order.ErrNotCancellable):
			clientMessage = "Bestelling kan niet meer geannuleerd worden"
		default:
			log.Error().Err(err).Msg("Failed to cancel order via service")
			clientMessage = "Failed to cancel order"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toOrderResponse(cancelledOrder))
}

func toOrderResponse(o *order.Order) *OrderResponse {
	return &OrderResponse{
		Order:         o,
		StatusDisplay: o.StatusDisplayNL(),
		ItemCount:     o.ItemCount(),
	}
}
