package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/healclinics/shop-api/internal/address"
	"github.com/healclinics/shop-api/internal/pdok"
)

type AddressRequest struct {
	AddressType         string `json:"address_type" validate:"omitempty,oneof=shipping billing"`
	FirstName           string `json:"first_name" validate:"required,min=2"`
	LastName            string `json:"last_name" validate:"required,min=2"`
	Company             string `json:"company"`
	StreetAddress       string `json:"street_address" validate:"required"`
	HouseNumber         string `json:"house_number" validate:"required"`
	HouseNumberAddition string `json:"house_number_addition"`
	PostalCode          string `json:"postal_code" validate:"required"`
	City                string `json:"city" validate:"required"`
	Province            string `json:"province"`
	Country             string `json:"country"`
	IsDefaultShipping   bool   `json:"is_default_shipping"`
	IsDefaultBilling    bool   `json:"is_default_billing"`
}

type AddressHandler struct {
	service  address.Service
	lookup   *pdok.Client
	validate *validator.Validate
}

func NewAddressHandler(service address.Service, lookup *pdok.Client) *AddressHandler {
	return &AddressHandler{service: service, lookup: lookup, validate: validator.New()}
}

func (h *AddressHandler) RegisterRoutes(router chi.Router) {
	router.Get("/addresses", h.handleListAddresses)
	router.Post("/addresses", h.handleCreateAddress)
	router.Put("/addresses/{id}", h.handleUpdateAddress)
	router.Delete("/addresses/{id}", h.handleDeleteAddress)
}

// RegisterLookupRoutes mounts the directory proxy endpoints; these allow
// anonymous access and are rate-limited separately.
func (h *AddressHandler) RegisterLookupRoutes(router chi.Router) {
	router.Get("/address/lookup", h.handleLookup)
	router.Get("/address/suggest", h.handleSuggest)
}

func (h *AddressHandler) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	addresses, err := h.service.ListAddresses(r.Context(), claims.UserID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list addresses via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list addresses")
		return
	}
	if addresses == nil {
		addresses = []address.Address{}
	}

	respondWithJSON(w, http.StatusOK, addresses)
}

func (h *AddressHandler) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var requestPayload AddressRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	addr := toAddress(&requestPayload)
	addr.UserID = claims.UserID

	created, err := h.service.CreateAddress(r.Context(), addr)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, address.ErrInvalidPostcode) {
			clientMessage = "Ongeldige postcode"
		} else {
			log.Error().Err(err).Msg("Failed to create address via service")
			clientMessage = "Failed to create address"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AddressHandler) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	addressID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	var requestPayload AddressRequest
	if err := decodeJSON(r, &requestPayload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondValidationError(w, err)
		return
	}

	addr := toAddress(&requestPayload)
	addr.ID = addressID
	addr.UserID = claims.UserID

	if err := h.service.UpdateAddress(r.Context(), addr); err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, address.ErrNotFound):
			clientMessage = "Address not found"
		case errors.Is(err, address.ErrInvalidPostcode):
			clientMessage = "Ongeldige postcode"
		default:
			log.Error().Err(err).Msg("Failed to update address via service")
			clientMessage = "Failed to update address"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, addr)
}

func (h *AddressHandler) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	addressID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.service.DeleteAddress(r.Context(), claims.UserID, addressID); err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, address.ErrNotFound) {
			clientMessage = "Address not found"
		} else {
			log.Error().Err(err).Msg("Failed to delete address via service")
			clientMessage = "Failed to delete address"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) handleLookup(w http.ResponseWriter, r *http.Request) {
	postcode := r.URL.Query().Get("postcode")
	houseNumber := r.URL.Query().Get("house_number")
	addition := r.URL.Query().Get("addition")

	if postcode == "" || houseNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Postcode en huisnummer zijn verplicht")
		return
	}

	result, err := h.lookup.Lookup(r.Context(), postcode, houseNumber, addition)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case errors.Is(err, address.ErrInvalidPostcode):
			clientMessage = "Ongeldige postcode"
		case errors.Is(err, pdok.ErrNotFound):
			clientMessage = "Adres niet gevonden"
		case errors.Is(err, pdok.ErrUnavailable):
			clientMessage = "Adresservice tijdelijk niet beschikbaar"
		default:
			log.Error().Err(err).Msg("Failed to look up address")
			clientMessage = "Er ging iets mis bij het opzoeken van het adres"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"address": result})
}

func (h *AddressHandler) handleSuggest(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.lookup.Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Error().Err(err).Msg("Failed to get address suggestions")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get suggestions")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func toAddress(req *AddressRequest) *address.Address {
	return &address.Address{
		AddressType:         address.Type(req.AddressType),
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Company:             req.Company,
		StreetAddress:       req.StreetAddress,
		HouseNumber:         req.HouseNumber,
		HouseNumberAddition: req.HouseNumberAddition,
		PostalCode:          req.PostalCode,
		City:                req.City,
		Province:            req.Province,
		Country:             req.Country,
		IsDefaultShipping:   req.IsDefaultShipping,
		IsDefaultBilling:    req.IsDefaultBilling,
	}
}
