package http

import (
	"log/slog"
	"net/http"

	"github.com/alex90271/stripecheckout/pkg/httputil"
	"github.com/alex90271/stripecheckout/pkg/validator"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/service"
)

// CheckoutHandler handles HTTP requests for checkout session creation.
type CheckoutHandler struct {
	service *service.CheckoutService
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(svc *service.CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateSessionRequest is the JSON request body for creating a checkout
// session. Quantities are validated again in the service against the
// operator's per-item limit.
type CreateSessionRequest struct {
	Cart []CartLineRequest `json:"cart" validate:"required,min=1,dive"`
}

// CartLineRequest is one client cart line.
type CartLineRequest struct {
	ID       string `json:"id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gte=1"`
}

// CreateSessionResponse is the JSON payload returned on session creation. The
// storefront redirects the shopper to URL.
type CreateSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateSession handles POST /api/v1/checkout.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	lines := make([]domain.CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		lines = append(lines, domain.CartLine{ProductID: line.ID, Quantity: line.Quantity})
	}

	session, err := h.service.CreateSession(r.Context(), lines)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, CreateSessionResponse{
		ID:  session.ID,
		URL: session.URL,
	})
}
