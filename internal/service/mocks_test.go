package service

import (
	"context"
	"log/slog"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
)

// --- Mock settings repository ---

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) Load(ctx context.Context) (*domain.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Settings), args.Error(1)
}

func (m *mockSettingsRepo) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *mockSettingsRepo) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// --- Mock catalog cache ---

type mockCatalogCache struct {
	mock.Mock
}

func (m *mockCatalogCache) GetProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockCatalogCache) SetProducts(ctx context.Context, products []domain.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *mockCatalogCache) GetShippingRate(ctx context.Context) (*domain.ShippingRate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingRate), args.Error(1)
}

func (m *mockCatalogCache) SetShippingRate(ctx context.Context, rate *domain.ShippingRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *mockCatalogCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- Mock seen-event store ---

type mockSeenStore struct {
	mock.Mock
}

func (m *mockSeenStore) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

// --- Mock payment provider ---

type mockProvider struct {
	mock.Mock

	// secretKey records the API key the factory was called with.
	secretKey string
}

func (m *mockProvider) factory(secretKey string) provider.Provider {
	m.secretKey = secretKey
	return m
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProvider) GetShippingRate(ctx context.Context, id string) (*domain.ShippingRate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingRate), args.Error(1)
}

func (m *mockProvider) CreateSession(ctx context.Context, input *provider.SessionInput) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *mockProvider) SessionLineItems(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LineItem), args.Error(1)
}

func (m *mockProvider) SetPaymentDescription(ctx context.Context, paymentIntentID, description string) error {
	args := m.Called(ctx, paymentIntentID, description)
	return args.Error(0)
}

func (m *mockProvider) PaymentReceiptURL(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

// --- Stub event publisher ---

type stubPublisher struct {
	sessionsCreated []string
	ordersCompleted []string
	err             error
}

func (s *stubPublisher) PublishSessionCreated(ctx context.Context, session *domain.CheckoutSession, lines []domain.CartLine) error {
	s.sessionsCreated = append(s.sessionsCreated, session.ID)
	return s.err
}

func (s *stubPublisher) PublishOrderCompleted(ctx context.Context, completed *domain.CompletedSession, description string) error {
	s.ordersCompleted = append(s.ordersCompleted, completed.SessionID)
	return s.err
}

// --- Helpers ---

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
		AdminEmail:         "orders@example.com",
		Timezone:           "America/Denver",
	}
}
