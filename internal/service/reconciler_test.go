package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/sender"
)

const webhookSecret = "whsec_test_123"

// signPayload produces a signature header the verifier accepts, in the same
// scheme the provider uses: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedEventPayload(eventID string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"amount_total": 2500,
				"currency": "usd",
				"created": 1735000000,
				"payment_intent": "pi_1",
				"customer_details": {"name": "Jane Doe", "email": "jane@example.com"}
			}
		}
	}`, eventID, stripe.APIVersion))
}

// recordingSender captures dispatched notifications.
type recordingSender struct {
	name    string
	enabled bool
	err     error
	sent    []*sender.Notification
}

func (r *recordingSender) Name() string                          { return r.name }
func (r *recordingSender) Enabled(_ *domain.Settings) bool       { return r.enabled }
func (r *recordingSender) Send(_ context.Context, n *sender.Notification, _ *domain.Settings) error {
	r.sent = append(r.sent, n)
	return r.err
}

type reconcilerFixture struct {
	settings  *mockSettingsRepo
	seen      *mockSeenStore
	provider  *mockProvider
	publisher *stubPublisher
	sink      *recordingSender
	svc       *ReconcilerService
}

func newReconcilerFixture() *reconcilerFixture {
	f := &reconcilerFixture{
		settings:  new(mockSettingsRepo),
		seen:      new(mockSeenStore),
		provider:  new(mockProvider),
		publisher: &stubPublisher{},
		sink:      &recordingSender{name: "test-sink", enabled: true},
	}
	dispatcher := sender.NewDispatcher(newTestLogger(), f.sink)
	f.svc = NewReconcilerService(f.settings, f.seen, f.provider.factory, dispatcher, f.publisher, newTestLogger())
	return f
}

func TestHandleEvent_MissingWebhookSecret(t *testing.T) {
	f := newReconcilerFixture()
	s := testSettings()
	s.WebhookSecret = ""
	f.settings.On("Load", mock.Anything).Return(s, nil)

	err := f.svc.HandleEvent(context.Background(), completedEventPayload("evt_1"), "t=1,v1=bogus")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Status)
}

func TestHandleEvent_InvalidSignature(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, "whsec_wrong_secret", time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)
	assert.Empty(t, f.sink.sent)
}

func TestHandleEvent_StaleSignature(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now().Add(-time.Hour))

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)
}

func TestHandleEvent_UnsupportedEventType(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)

	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "object": "charge"}}
	}`, stripe.APIVersion))
	sig := signPayload(payload, webhookSecret, time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedEvent)
	assert.Empty(t, f.sink.sent)
}

func TestHandleEvent_Success(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
	f.seen.On("MarkSeen", mock.Anything, "evt_1").Return(true, nil)

	f.provider.On("SessionLineItems", mock.Anything, "cs_1").Return([]domain.LineItem{
		{Description: "Coffee Beans", Quantity: 2},
		{Description: "Mug", Quantity: 1},
	}, nil)
	f.provider.On("SetPaymentDescription", mock.Anything, "pi_1", "2x Coffee Beans, 1x Mug").Return(nil)
	f.provider.On("PaymentReceiptURL", mock.Anything, "pi_1").Return("https://pay.example/receipt/1", nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	require.NoError(t, err)

	require.Len(t, f.sink.sent, 1)
	n := f.sink.sent[0]
	assert.Equal(t, "cs_1", n.Order.SessionID)
	assert.Equal(t, "pi_1", n.Order.PaymentIntentID)
	assert.Equal(t, "Jane Doe", n.Order.CustomerName)
	assert.Equal(t, int64(2500), n.Order.AmountTotal)
	assert.Equal(t, "2x Coffee Beans, 1x Mug", n.Summary.Description)
	assert.Equal(t, "https://pay.example/receipt/1", n.Summary.ReceiptURL)
	assert.Equal(t, "https://dashboard.stripe.com/payments/pi_1", n.DashboardURL)

	assert.Equal(t, []string{"cs_1"}, f.publisher.ordersCompleted)
	assert.Equal(t, "sk_test_123", f.provider.secretKey)
}

func TestHandleEvent_ReplayAcknowledgedWithoutProcessing(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
	f.seen.On("MarkSeen", mock.Anything, "evt_1").Return(false, nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	require.NoError(t, err)

	assert.Empty(t, f.sink.sent)
	assert.Empty(t, f.publisher.ordersCompleted)
	f.provider.AssertNotCalled(t, "SessionLineItems", mock.Anything, mock.Anything)
}

func TestHandleEvent_DedupStoreDownFailsOpen(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
	f.seen.On("MarkSeen", mock.Anything, "evt_1").Return(false, errors.New("redis down"))

	f.provider.On("SessionLineItems", mock.Anything, "cs_1").Return([]domain.LineItem{
		{Description: "Coffee Beans", Quantity: 1},
	}, nil)
	f.provider.On("SetPaymentDescription", mock.Anything, "pi_1", mock.Anything).Return(nil)
	f.provider.On("PaymentReceiptURL", mock.Anything, "pi_1").Return("", nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	require.NoError(t, err)
	assert.Len(t, f.sink.sent, 1)
}

func TestHandleEvent_SummaryFailureStillNotifies(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
	f.seen.On("MarkSeen", mock.Anything, "evt_1").Return(true, nil)

	f.provider.On("SessionLineItems", mock.Anything, "cs_1").Return(nil, errors.New("api down"))

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now())

	err := f.svc.HandleEvent(context.Background(), payload, sig)
	require.NoError(t, err)

	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, "Order details unavailable", f.sink.sent[0].Summary.Description)
	assert.Empty(t, f.sink.sent[0].Summary.ReceiptURL)
}

func TestHandleEvent_ManyItemsCollapse(t *testing.T) {
	f := newReconcilerFixture()
	f.settings.On("Load", mock.Anything).Return(testSettings(), nil)
	f.seen.On("MarkSeen", mock.Anything, "evt_1").Return(true, nil)

	f.provider.On("SessionLineItems", mock.Anything, "cs_1").Return([]domain.LineItem{
		{Description: "A", Quantity: 1},
		{Description: "B", Quantity: 1},
		{Description: "C", Quantity: 1},
		{Description: "D", Quantity: 1},
	}, nil)
	f.provider.On("SetPaymentDescription", mock.Anything, "pi_1", "Multiple Items (3+)").Return(nil)
	f.provider.On("PaymentReceiptURL", mock.Anything, "pi_1").Return("", nil)

	payload := completedEventPayload("evt_1")
	sig := signPayload(payload, webhookSecret, time.Now())

	require.NoError(t, f.svc.HandleEvent(context.Background(), payload, sig))
	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, "Multiple Items (3+)", f.sink.sent[0].Summary.Description)
}
