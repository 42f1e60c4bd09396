// Package email delivers completed-order notifications to the operator
// mailbox over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/sender"
)

// Config holds SMTP delivery settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Sender delivers order notifications by email.
type Sender struct {
	cfg Config
}

// New creates an email sender.
func New(cfg Config) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Name() string {
	return "email"
}

// Enabled reports whether an operator mailbox is configured.
func (s *Sender) Enabled(settings *domain.Settings) bool {
	return settings.AdminEmail != ""
}

// Send mails the order summary to the operator mailbox. The subject carries
// the order date only; the body spells out the full timestamp.
func (s *Sender) Send(ctx context.Context, n *sender.Notification, settings *domain.Settings) error {
	date := domain.FormatOrderDate(n.Order.CreatedAt, settings.EffectiveTimezone())

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(settings.AdminEmail); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject("New Stripe Order: " + subjectDate(n.Order.CreatedAt, settings.EffectiveTimezone()))
	msg.SetBodyString(mail.TypeTextHTML, s.body(n, date))

	opts := []mail.Option{mail.WithPort(s.cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func subjectDate(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "Date Error"
	}
	return t.In(loc).Format("01/02/2006")
}

// body renders the notification HTML. Everything customer-supplied is
// escaped before interpolation.
func (s *Sender) body(n *sender.Notification, date string) string {
	return fmt.Sprintf(`<html>
<body>
	<h2>New Stripe Charge</h2>
	<p><strong>Order Date:</strong> %s</p>
	<p><strong>Billed to:</strong> %s (%s)</p>
	<p><strong>Total Amount:</strong> $%s</p>
	<p><strong>Order Details:</strong> %s</p>
	<p><strong>Stripe ID:</strong> %s</p>
	<p><strong><a href="%s">Stripe Receipt</a> | <a href="%s">View in Dashboard</a></strong></p>
</body>
</html>`,
		html.EscapeString(date),
		html.EscapeString(n.Order.CustomerName),
		html.EscapeString(n.Order.CustomerEmail),
		html.EscapeString(domain.FormatDollars(n.Order.AmountTotal)),
		html.EscapeString(n.Summary.Description),
		html.EscapeString(n.Order.PaymentIntentID),
		html.EscapeString(n.Summary.ReceiptURL),
		html.EscapeString(n.DashboardURL),
	)
}
