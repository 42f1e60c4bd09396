package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/alex90271/stripecheckout/pkg/httputil"

	"github.com/alex90271/stripecheckout/internal/service"
)

// maxWebhookBody bounds the webhook payload size. Provider events are a few
// KB; anything larger is garbage.
const maxWebhookBody = 1 << 20

// WebhookHandler handles provider webhook deliveries.
type WebhookHandler struct {
	service *service.ReconcilerService
	logger  *slog.Logger
}

// NewWebhookHandler creates a new webhook HTTP handler.
func NewWebhookHandler(svc *service.ReconcilerService, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: svc,
		logger:  logger,
	}
}

// HandleWebhook handles POST /stripe-checkout/v1/webhook. Requests are gated
// before any body parsing: JSON content type and a signature header are both
// required, everything else is rejected up front. The gates answer 401 with a
// FORBIDDEN body, matching the endpoint's original permission-callback
// contract that Stripe's webhook registration was configured against; a
// signature that is present but fails verification answers 400.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "invalid webhook request"},
		})
		return
	}
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "FORBIDDEN", Message: "invalid webhook request"},
		})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_PAYLOAD", Message: "unable to read request body"},
		})
		return
	}

	if err := h.service.HandleEvent(r.Context(), payload, signature); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, map[string]string{"status": "processed"})
}
