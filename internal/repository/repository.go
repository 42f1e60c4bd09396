package repository

import (
	"context"

	"github.com/alex90271/stripecheckout/internal/domain"
)

// SettingsRepository persists operator configuration. Secret values are
// encrypted at rest; implementations return plaintext.
type SettingsRepository interface {
	// Load returns the full operator configuration.
	Load(ctx context.Context) (*domain.Settings, error)

	// Get returns one setting value, or ErrNotFound when unset.
	Get(ctx context.Context, key string) (string, error)

	// Set upserts one setting value.
	Set(ctx context.Context, key, value string) error
}

// CatalogCache stores the normalized catalog with a TTL. A cache miss is
// signalled by ErrNotFound; callers fall through to the provider.
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]domain.Product, error)
	SetProducts(ctx context.Context, products []domain.Product) error

	GetShippingRate(ctx context.Context) (*domain.ShippingRate, error)
	SetShippingRate(ctx context.Context, rate *domain.ShippingRate) error

	// Invalidate drops both the product and shipping entries.
	Invalidate(ctx context.Context) error
}

// SeenEventStore records processed webhook event ids for replay suppression.
type SeenEventStore interface {
	// MarkSeen records an event id and reports whether this call was the
	// first sighting. Returning (false, nil) means the event is a replay.
	MarkSeen(ctx context.Context, eventID string) (bool, error)
}
