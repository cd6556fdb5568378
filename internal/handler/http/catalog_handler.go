package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/healclinics/shop-api/internal/catalog"
)

// ProductResponse exposes the stored product plus the derived price fields.
type ProductResponse struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"short_description"`
	SKU              string           `json:"sku"`
	Price            decimal.Decimal  `json:"price"`
	PriceExclVAT     decimal.Decimal  `json:"price_excl_vat"`
	VATAmount        decimal.Decimal  `json:"vat_amount"`
	OriginalPrice    *decimal.Decimal `json:"original_price,omitempty"`
	IsOnSale         bool             `json:"is_on_sale"`
	SalePercentage   int              `json:"sale_percentage"`
	Category         catalog.Category `json:"category"`
	Stock            int              `json:"stock"`
	IsLowStock       bool             `json:"is_low_stock"`
	IsActive         bool             `json:"is_active"`
	IsFeatured       bool             `json:"is_featured"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

type CatalogHandler struct {
	service catalog.Service
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := catalog.ListFilter{
		Category:   catalog.Category(r.URL.Query().Get("category")),
		OnlyActive: r.URL.Query().Get("include_inactive") != "true",
	}
	if r.URL.Query().Get("featured") == "true" {
		filter.OnlyFeatured = true
	}

	products, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to list products")
		return
	}

	responsePayload := make([]ProductResponse, 0, len(products))
	for i := range products {
		responsePayload = append(responsePayload, toProductResponse(&products[i]))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "id")
	productID, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("product_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		if errors.Is(err, catalog.ErrNotFound) {
			clientMessage = "Product not found"
		} else {
			log.Error().Err(err).Msg("Failed to get product via service")
			clientMessage = "Failed to get product"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, toProductResponse(product))
}

func toProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Price:            p.Price,
		PriceExclVAT:     p.PriceExclVAT(),
		VATAmount:        p.VATAmount(),
		OriginalPrice:    p.OriginalPrice,
		IsOnSale:         p.IsOnSale(),
		SalePercentage:   p.SalePercentage(),
		Category:         p.Category,
		Stock:            p.Stock,
		IsLowStock:       p.IsLowStock(),
		IsActive:         p.IsActive,
		IsFeatured:       p.IsFeatured,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
