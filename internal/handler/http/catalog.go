package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/alex90271/stripecheckout/pkg/httputil"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/service"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// CatalogResponse is the JSON payload for the product listing.
type CatalogResponse struct {
	Products     []domain.Product     `json:"products"`
	ShippingRate *domain.ShippingRate `json:"shipping_rate,omitempty"`
}

// ListProducts handles GET /api/v1/products. It returns the sellable catalog
// sorted by ascending price, plus the shipping rate when configured.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Products(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Shipping is display-only here; its failure should not take the
	// storefront down with it.
	rate, err := h.service.ShippingRate(r.Context())
	if err != nil {
		h.logger.WarnContext(r.Context(), "shipping rate lookup failed",
			slog.String("error", err.Error()),
		)
		rate = nil
	}

	httputil.WriteSuccess(w, http.StatusOK, CatalogResponse{
		Products:     products,
		ShippingRate: rate,
	})
}

// GetProduct handles GET /api/v1/products/{id}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.service.Product(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, product)
}

// InvalidateCache handles POST /api/v1/cache/invalidate. The storefront
// calls it after the operator edits the product list.
func (h *CatalogHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteSuccess(w, http.StatusOK, map[string]string{"status": "invalidated"})
}
