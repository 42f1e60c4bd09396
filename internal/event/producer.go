package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	pkgkafka "github.com/alex90271/stripecheckout/pkg/kafka"

	"github.com/alex90271/stripecheckout/internal/domain"
)

// Kafka topic constants for checkout domain events.
const (
	TopicSessionCreated = "checkout.session.created"
	TopicOrderCompleted = "checkout.order.completed"
)

// Aggregate type constant.
const AggregateTypeSession = "checkout_session"

// Source identifier for events originating from this service.
const SourceCheckoutService = "stripe-checkout"

// SessionCreatedData is the payload for a checkout.session.created event.
type SessionCreatedData struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderCompletedData is the payload for a checkout.order.completed event.
type OrderCompletedData struct {
	SessionID       string    `json:"session_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	CustomerName    string    `json:"customer_name,omitempty"`
	CustomerEmail   string    `json:"customer_email,omitempty"`
	AmountTotal     int64     `json:"amount_total"`
	Currency        string    `json:"currency"`
	Description     string    `json:"description"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Producer publishes checkout domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the checkout service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishSessionCreated publishes a checkout.session.created event.
func (p *Producer) PublishSessionCreated(ctx context.Context, session *domain.CheckoutSession, lines []domain.CartLine) error {
	data := SessionCreatedData{
		SessionID: session.ID,
		Lines:     lines,
		CreatedAt: session.CreatedAt,
	}

	event, err := pkgkafka.NewEvent(TopicSessionCreated, session.ID, AggregateTypeSession, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create session.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSessionCreated, event); err != nil {
		return fmt.Errorf("publish session.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.session.created event",
		slog.String("session_id", session.ID),
	)

	return nil
}

// PublishOrderCompleted publishes a checkout.order.completed event.
func (p *Producer) PublishOrderCompleted(ctx context.Context, completed *domain.CompletedSession, description string) error {
	data := OrderCompletedData{
		SessionID:       completed.SessionID,
		PaymentIntentID: completed.PaymentIntentID,
		CustomerName:    completed.CustomerName,
		CustomerEmail:   completed.CustomerEmail,
		AmountTotal:     completed.AmountTotal,
		Currency:        completed.Currency,
		Description:     description,
		CompletedAt:     completed.CreatedAt,
	}

	event, err := pkgkafka.NewEvent(TopicOrderCompleted, completed.SessionID, AggregateTypeSession, SourceCheckoutService, data)
	if err != nil {
		return fmt.Errorf("create order.completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCompleted, event); err != nil {
		return fmt.Errorf("publish order.completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.order.completed event",
		slog.String("session_id", completed.SessionID),
		slog.String("payment_intent_id", completed.PaymentIntentID),
	)

	return nil
}
