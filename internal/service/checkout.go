package service

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
	"github.com/alex90271/stripecheckout/internal/repository"
)

// EventPublisher publishes checkout domain events. Satisfied by
// event.Producer; tests substitute a stub.
type EventPublisher interface {
	PublishSessionCreated(ctx context.Context, session *domain.CheckoutSession, lines []domain.CartLine) error
	PublishOrderCompleted(ctx context.Context, completed *domain.CompletedSession, description string) error
}

// SiteIdentity carries the deployment identity substituted into operator
// message templates and redirect URLs.
type SiteIdentity struct {
	Name       string
	URL        string
	SuccessURL string
	CancelURL  string
}

// CheckoutService validates carts and creates hosted checkout sessions. All
// prices come from the catalog; client-supplied amounts are never trusted.
type CheckoutService struct {
	settings repository.SettingsRepository
	catalog  *CatalogService
	provider provider.Factory
	producer EventPublisher
	site     SiteIdentity
	logger   *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	settings repository.SettingsRepository,
	catalog *CatalogService,
	providerFactory provider.Factory,
	producer EventPublisher,
	site SiteIdentity,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		settings: settings,
		catalog:  catalog,
		provider: providerFactory,
		producer: producer,
		site:     site,
		logger:   logger,
	}
}

// CreateSession validates the cart and creates a hosted checkout session.
func (s *CheckoutService) CreateSession(ctx context.Context, lines []domain.CartLine) (*domain.CheckoutSession, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.DisableStore {
		return nil, apperrors.StoreDisabled(settings.StoreDisabledMessage)
	}
	if len(lines) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	maxQuantity := settings.EffectiveMaxQuantity()
	for _, line := range lines {
		if line.ProductID == "" {
			return nil, apperrors.InvalidInput("cart line is missing a product id")
		}
		if line.Quantity < 1 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("invalid quantity for product %s", line.ProductID))
		}
	}

	// Duplicate ids are merged before the limit check so splitting an order
	// across lines cannot bypass the per-item cap. Over-limit carts are
	// rejected outright, never clamped.
	grouped := domain.GroupCartLines(lines)
	for _, line := range grouped {
		if line.Quantity > maxQuantity {
			return nil, apperrors.QuantityExceeded(line.ProductID, maxQuantity)
		}
	}

	input := &provider.SessionInput{
		SuccessURL:      s.site.SuccessURL,
		CancelURL:       s.site.CancelURL,
		ShippingRateID:  settings.ShippingRateID,
		EnableInvoice:   settings.EnableInvoices,
		ConsentMessage:  domain.RenderTemplate(settings.ConsentMessage, s.site.Name, s.site.URL),
		ShippingMessage: domain.RenderTemplate(settings.ShippingMessage, s.site.Name, s.site.URL),
		SubmitMessage:   domain.RenderTemplate(settings.ReceiptMessage, s.site.Name, s.site.URL),
	}

	for _, line := range grouped {
		product, err := s.catalog.Product(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		input.Lines = append(input.Lines, provider.SessionLine{
			PriceID:     product.PriceID,
			Quantity:    int64(line.Quantity),
			MaxQuantity: int64(maxQuantity),
		})
	}

	session, err := s.provider(settings.SecretKey).CreateSession(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "checkout session creation failed",
			slog.String("error", err.Error()),
		)
		return nil, apperrors.ProviderFailure(err)
	}

	if err := s.producer.PublishSessionCreated(ctx, session, grouped); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.session.created event",
			slog.String("session_id", session.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", session.ID),
		slog.Int("line_count", len(grouped)),
	)

	return session, nil
}
