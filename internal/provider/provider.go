package provider

import (
	"context"
	"errors"

	"github.com/alex90271/stripecheckout/internal/domain"
)

// ErrProductUnavailable is returned when a product exists but cannot be sold:
// it is inactive or has no default price.
var ErrProductUnavailable = errors.New("provider: product unavailable")

// SessionLine is one line of a hosted checkout session. PriceID is resolved
// server-side from the catalog; the client never supplies prices.
type SessionLine struct {
	PriceID     string
	Quantity    int64
	MaxQuantity int64
}

// SessionInput holds the parameters for creating a hosted checkout session.
type SessionInput struct {
	Lines          []SessionLine
	SuccessURL     string
	CancelURL      string
	ShippingRateID string
	EnableInvoice  bool

	// Operator-authored messages shown on the hosted page. Empty strings
	// omit the corresponding element.
	ConsentMessage  string
	ShippingMessage string
	SubmitMessage   string
}

// Provider defines the interface for payment provider integrations.
type Provider interface {
	// Name returns the provider name (e.g., "mock", "stripe").
	Name() string

	// GetProduct fetches one sellable product with its default price
	// resolved. Inactive or price-less products return ErrProductUnavailable.
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetShippingRate fetches the configured flat shipping rate.
	GetShippingRate(ctx context.Context, id string) (*domain.ShippingRate, error)

	// CreateSession creates a hosted checkout session.
	CreateSession(ctx context.Context, input *SessionInput) (*domain.CheckoutSession, error)

	// SessionLineItems fetches the authoritative line items of a closed
	// session.
	SessionLineItems(ctx context.Context, sessionID string) ([]domain.LineItem, error)

	// SetPaymentDescription annotates the payment with an order summary so
	// it is readable in the provider dashboard.
	SetPaymentDescription(ctx context.Context, paymentIntentID, description string) error

	// PaymentReceiptURL returns the hosted receipt URL for a payment, or
	// empty string when none exists yet.
	PaymentReceiptURL(ctx context.Context, paymentIntentID string) (string, error)
}

// Factory builds a Provider bound to an operator API key. Keys live in the
// settings store and may rotate at runtime, so callers construct a provider
// per operation instead of holding one for the process lifetime.
type Factory func(secretKey string) Provider
