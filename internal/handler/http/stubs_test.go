package http

import (
	"context"
	"log/slog"
	"os"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSettings() *domain.Settings {
	return &domain.Settings{
		SecretKey:          "sk_test_123",
		WebhookSecret:      "whsec_test_123",
		ShippingRateID:     "shr_1",
		ProductIDs:         []string{"prod_a", "prod_b"},
		MaxQuantityPerItem: 10,
		Timezone:           "America/Denver",
	}
}

type stubSettings struct {
	settings *domain.Settings
	err      error
}

func (s *stubSettings) Load(context.Context) (*domain.Settings, error) {
	return s.settings, s.err
}

func (s *stubSettings) Get(context.Context, string) (string, error) {
	return "", apperrors.ErrNotFound
}

func (s *stubSettings) Set(context.Context, string, string) error { return nil }

type stubCache struct {
	products []domain.Product
	rate     *domain.ShippingRate
	err      error
}

func (c *stubCache) GetProducts(context.Context) ([]domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.products == nil {
		return nil, apperrors.ErrNotFound
	}
	return c.products, nil
}

func (c *stubCache) SetProducts(_ context.Context, products []domain.Product) error {
	c.products = products
	return nil
}

func (c *stubCache) GetShippingRate(context.Context) (*domain.ShippingRate, error) {
	if c.rate == nil {
		return nil, apperrors.ErrNotFound
	}
	return c.rate, nil
}

func (c *stubCache) SetShippingRate(_ context.Context, rate *domain.ShippingRate) error {
	c.rate = rate
	return nil
}

func (c *stubCache) Invalidate(context.Context) error {
	c.products = nil
	c.rate = nil
	return c.err
}

type stubSeen struct {
	first bool
	err   error
}

func (s *stubSeen) MarkSeen(context.Context, string) (bool, error) {
	return s.first, s.err
}

// stubProvider is a canned payment provider; its factory method satisfies
// provider.Factory.
type stubProvider struct {
	session    *domain.CheckoutSession
	sessionErr error
	rate       *domain.ShippingRate
	rateErr    error
}

func (p *stubProvider) factory(string) provider.Provider { return p }

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) GetProduct(context.Context, string) (*domain.Product, error) {
	return nil, provider.ErrProductUnavailable
}

func (p *stubProvider) GetShippingRate(context.Context, string) (*domain.ShippingRate, error) {
	return p.rate, p.rateErr
}

func (p *stubProvider) CreateSession(context.Context, *provider.SessionInput) (*domain.CheckoutSession, error) {
	return p.session, p.sessionErr
}

func (p *stubProvider) SessionLineItems(context.Context, string) ([]domain.LineItem, error) {
	return nil, provider.ErrProductUnavailable
}

func (p *stubProvider) SetPaymentDescription(context.Context, string, string) error { return nil }

func (p *stubProvider) PaymentReceiptURL(context.Context, string) (string, error) { return "", nil }

type nopPublisher struct{}

func (nopPublisher) PublishSessionCreated(context.Context, *domain.CheckoutSession, []domain.CartLine) error {
	return nil
}

func (nopPublisher) PublishOrderCompleted(context.Context, *domain.CompletedSession, string) error {
	return nil
}
