package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alex90271/stripecheckout/pkg/health"
	"github.com/alex90271/stripecheckout/pkg/middleware"

	"github.com/alex90271/stripecheckout/internal/service"
)

// NewRouter creates a chi router with all checkout service routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	checkoutService *service.CheckoutService,
	reconcilerService *service.ReconcilerService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("stripe-checkout"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Catalog API endpoints
	catalogHandler := NewCatalogHandler(catalogService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", catalogHandler.ListProducts)
		r.Get("/{id}", catalogHandler.GetProduct)
	})
	r.Post("/api/v1/cache/invalidate", catalogHandler.InvalidateCache)

	// Checkout API endpoints
	checkoutHandler := NewCheckoutHandler(checkoutService, logger)

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", checkoutHandler.CreateSession)
	})

	// Provider webhook. The path mirrors the storefront's existing webhook
	// registration so the provider-side endpoint URL keeps working.
	webhookHandler := NewWebhookHandler(reconcilerService, logger)
	r.Post("/stripe-checkout/v1/webhook", webhookHandler.HandleWebhook)

	return r
}
