// Package sender fans completed-order notifications out to the configured
// sinks. Delivery is best effort: a failing sink is logged and skipped so one
// dead channel never blocks webhook acknowledgement.
package sender

import (
	"context"
	"log/slog"

	"github.com/alex90271/stripecheckout/internal/domain"
)

// Notification is one completed order, resolved and ready to deliver.
type Notification struct {
	Order        domain.CompletedSession
	Summary      domain.OrderSummary
	DashboardURL string
}

// Sender delivers a completed-order notification to one sink.
type Sender interface {
	// Name identifies the sink in logs.
	Name() string

	// Enabled reports whether the operator has configured this sink.
	Enabled(settings *domain.Settings) bool

	// Send delivers the notification.
	Send(ctx context.Context, n *Notification, settings *domain.Settings) error
}

// Dispatcher fans a notification out to every enabled sender.
type Dispatcher struct {
	senders []Sender
	logger  *slog.Logger
}

// NewDispatcher creates a dispatcher over the given senders.
func NewDispatcher(logger *slog.Logger, senders ...Sender) *Dispatcher {
	return &Dispatcher{senders: senders, logger: logger}
}

// Dispatch delivers the notification to each enabled sender in order and
// returns the number of successful deliveries.
func (d *Dispatcher) Dispatch(ctx context.Context, n *Notification, settings *domain.Settings) int {
	delivered := 0
	for _, s := range d.senders {
		if !s.Enabled(settings) {
			continue
		}
		if err := s.Send(ctx, n, settings); err != nil {
			d.logger.ErrorContext(ctx, "notification delivery failed",
				slog.String("sender", s.Name()),
				slog.String("session_id", n.Order.SessionID),
				slog.String("error", err.Error()),
			)
			continue
		}
		delivered++
		d.logger.InfoContext(ctx, "notification delivered",
			slog.String("sender", s.Name()),
			slog.String("session_id", n.Order.SessionID),
		)
	}
	return delivered
}
