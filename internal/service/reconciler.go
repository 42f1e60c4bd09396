package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"
	"github.com/alex90271/stripecheckout/pkg/logger"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
	"github.com/alex90271/stripecheckout/internal/repository"
	"github.com/alex90271/stripecheckout/internal/sender"
)

// EventCheckoutSessionCompleted is the only webhook event type this service
// processes.
const EventCheckoutSessionCompleted = "checkout.session.completed"

// maxLogLength bounds provider diagnostics written to logs.
const maxLogLength = 100

const dashboardPaymentURL = "https://dashboard.stripe.com/payments/"

// descriptionUnavailable replaces the order summary when the provider cannot
// be reached after payment. The notification still goes out.
const descriptionUnavailable = "Order details unavailable"

// ReconcilerService verifies webhook deliveries, resolves the authoritative
// order from the provider and fans out notifications.
type ReconcilerService struct {
	settings   repository.SettingsRepository
	seen       repository.SeenEventStore
	provider   provider.Factory
	dispatcher *sender.Dispatcher
	producer   EventPublisher
	logger     *slog.Logger
}

// NewReconcilerService creates a new reconciler service.
func NewReconcilerService(
	settings repository.SettingsRepository,
	seen repository.SeenEventStore,
	providerFactory provider.Factory,
	dispatcher *sender.Dispatcher,
	producer EventPublisher,
	log *slog.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		settings:   settings,
		seen:       seen,
		provider:   providerFactory,
		dispatcher: dispatcher,
		producer:   producer,
		logger:     log,
	}
}

// HandleEvent verifies and processes one webhook delivery. A nil return means
// the delivery should be acknowledged; replays acknowledge without
// reprocessing so the provider stops redelivering.
func (s *ReconcilerService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.WebhookSecret == "" {
		return apperrors.Internal(fmt.Errorf("webhook secret is not configured"))
	}

	evt, err := webhook.ConstructEvent(payload, signature, settings.WebhookSecret)
	if err != nil {
		s.logger.WarnContext(ctx, "webhook signature verification failed",
			slog.String("error", logger.Truncate(err.Error(), maxLogLength)),
		)
		return apperrors.SignatureInvalid(err)
	}

	if string(evt.Type) != EventCheckoutSessionCompleted {
		return apperrors.UnsupportedEvent(string(evt.Type))
	}

	// Replay suppression is best effort: if the store is down we process
	// anyway, because a duplicate notification beats a lost one.
	first, err := s.seen.MarkSeen(ctx, evt.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "seen-event store unavailable, processing without dedup",
			slog.String("event_id", evt.ID),
			slog.String("error", err.Error()),
		)
	} else if !first {
		s.logger.InfoContext(ctx, "duplicate webhook delivery acknowledged",
			slog.String("event_id", evt.ID),
		)
		return nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(evt.Data.Raw, &session); err != nil {
		return apperrors.InvalidInput("malformed event payload")
	}

	completed := completedSessionFrom(&session)
	summary := s.resolveSummary(ctx, settings.SecretKey, completed)

	notification := &sender.Notification{
		Order:        *completed,
		Summary:      *summary,
		DashboardURL: dashboardPaymentURL + completed.PaymentIntentID,
	}
	delivered := s.dispatcher.Dispatch(ctx, notification, settings)

	if err := s.producer.PublishOrderCompleted(ctx, completed, summary.Description); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish checkout.order.completed event",
			slog.String("session_id", completed.SessionID),
			slog.String("error", err.Error()),
		)
		// Do not fail the delivery if event publishing fails.
	}

	s.logger.InfoContext(ctx, "webhook processed",
		slog.String("event_id", evt.ID),
		slog.String("session_id", completed.SessionID),
		slog.Int("notifications_delivered", delivered),
	)

	return nil
}

// resolveSummary pulls the authoritative line items, annotates the payment
// and fetches the receipt URL. Provider failures degrade to a placeholder
// summary so the notification still goes out.
func (s *ReconcilerService) resolveSummary(ctx context.Context, secretKey string, completed *domain.CompletedSession) *domain.OrderSummary {
	p := s.provider(secretKey)

	items, err := p.SessionLineItems(ctx, completed.SessionID)
	if err != nil {
		s.logger.ErrorContext(ctx, "order summary resolution failed",
			slog.String("session_id", completed.SessionID),
			slog.String("error", logger.Truncate(err.Error(), maxLogLength)),
		)
		return &domain.OrderSummary{Description: descriptionUnavailable}
	}

	summary := &domain.OrderSummary{Description: domain.DescribeLineItems(items)}
	if completed.PaymentIntentID == "" {
		return summary
	}

	if err := p.SetPaymentDescription(ctx, completed.PaymentIntentID, summary.Description); err != nil {
		s.logger.WarnContext(ctx, "payment description update failed",
			slog.String("payment_intent_id", completed.PaymentIntentID),
			slog.String("error", logger.Truncate(err.Error(), maxLogLength)),
		)
	}

	receiptURL, err := p.PaymentReceiptURL(ctx, completed.PaymentIntentID)
	if err != nil {
		s.logger.WarnContext(ctx, "receipt url lookup failed",
			slog.String("payment_intent_id", completed.PaymentIntentID),
			slog.String("error", logger.Truncate(err.Error(), maxLogLength)),
		)
		return summary
	}
	summary.ReceiptURL = receiptURL
	return summary
}

func completedSessionFrom(session *stripe.CheckoutSession) *domain.CompletedSession {
	completed := &domain.CompletedSession{
		SessionID:   session.ID,
		CreatedAt:   time.Unix(session.Created, 0).UTC(),
		AmountTotal: session.AmountTotal,
		Currency:    string(session.Currency),
	}
	if session.PaymentIntent != nil {
		completed.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.CustomerDetails != nil {
		completed.CustomerName = session.CustomerDetails.Name
		completed.CustomerEmail = session.CustomerDetails.Email
	}
	return completed
}
