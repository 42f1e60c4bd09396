// Package groupme posts completed-order notifications to a GroupMe bot.
package groupme

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/alex90271/stripecheckout/pkg/httpclient"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/sender"
)

// Sender delivers order notifications to a GroupMe bot endpoint. Calls go
// through a circuit breaker so a dead endpoint stops being hammered.
type Sender struct {
	client *httpclient.CircuitBreakerClient
	url    string
}

// New creates a GroupMe sender posting to the given bot endpoint.
func New(client *httpclient.CircuitBreakerClient, url string) *Sender {
	return &Sender{client: client, url: url}
}

func (s *Sender) Name() string {
	return "groupme"
}

// Enabled reports whether the operator turned GroupMe notifications on and
// configured a bot.
func (s *Sender) Enabled(settings *domain.Settings) bool {
	return settings.GroupMeEnabled && settings.GroupMeBotID != ""
}

type botPost struct {
	BotID string `json:"bot_id"`
	Text  string `json:"text"`
}

// Send posts the order summary to the bot. The bot API acknowledges with
// 202 Accepted; anything else is a failure.
func (s *Sender) Send(ctx context.Context, n *sender.Notification, settings *domain.Settings) error {
	date := domain.FormatOrderDate(n.Order.CreatedAt, settings.EffectiveTimezone())
	text := fmt.Sprintf("New Stripe Charge!\nDate: %s\nDescription: %s\nTotal Amount: $%s\nID: %s",
		date,
		n.Summary.Description,
		domain.FormatDollars(n.Order.AmountTotal),
		n.Order.PaymentIntentID,
	)

	body, err := json.Marshal(botPost{BotID: settings.GroupMeBotID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal bot post: %w", err)
	}

	resp, err := s.client.Post(ctx, s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to groupme: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("groupme returned unexpected status %d", resp.StatusCode)
	}
	return nil
}
