package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/alex90271/stripecheckout/pkg/errors"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
	"github.com/alex90271/stripecheckout/internal/repository"
)

var catalogCacheRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Catalog cache lookups by entry and result.",
	},
	[]string{"entry", "result"},
)

// CatalogService serves the sellable catalog from cache, falling back to the
// payment provider on a miss. Provider reads happen one product at a time so
// a single bad product cannot empty the storefront.
type CatalogService struct {
	settings repository.SettingsRepository
	cache    repository.CatalogCache
	provider provider.Factory
	logger   *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	settings repository.SettingsRepository,
	cache repository.CatalogCache,
	providerFactory provider.Factory,
	logger *slog.Logger,
) *CatalogService {
	return &CatalogService{
		settings: settings,
		cache:    cache,
		provider: providerFactory,
		logger:   logger,
	}
}

// Products returns the sellable catalog sorted by ascending price.
func (s *CatalogService) Products(ctx context.Context) ([]domain.Product, error) {
	if products, err := s.cache.GetProducts(ctx); err == nil {
		catalogCacheRequests.WithLabelValues("products", "hit").Inc()
		return products, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		// A broken cache degrades to provider reads rather than failing
		// the storefront.
		s.logger.WarnContext(ctx, "catalog cache read failed",
			slog.String("error", err.Error()),
		)
	}
	catalogCacheRequests.WithLabelValues("products", "miss").Inc()

	products, err := s.fetchProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProducts(ctx, products); err != nil {
		s.logger.WarnContext(ctx, "catalog cache write failed",
			slog.String("error", err.Error()),
		)
	}
	return products, nil
}

// Product returns one sellable product by id.
func (s *CatalogService) Product(ctx context.Context, id string) (*domain.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, apperrors.NotFound("product", id)
}

// ShippingRate returns the configured shipping rate, or nil when the operator
// has not configured one.
func (s *CatalogService) ShippingRate(ctx context.Context) (*domain.ShippingRate, error) {
	if rate, err := s.cache.GetShippingRate(ctx); err == nil {
		catalogCacheRequests.WithLabelValues("shipping", "hit").Inc()
		return rate, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.WarnContext(ctx, "shipping cache read failed",
			slog.String("error", err.Error()),
		)
	}
	catalogCacheRequests.WithLabelValues("shipping", "miss").Inc()

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if settings.ShippingRateID == "" {
		return nil, nil
	}

	rate, err := s.provider(settings.SecretKey).GetShippingRate(ctx, settings.ShippingRateID)
	if err != nil {
		return nil, apperrors.ProviderFailure(err)
	}

	if err := s.cache.SetShippingRate(ctx, rate); err != nil {
		s.logger.WarnContext(ctx, "shipping cache write failed",
			slog.String("error", err.Error()),
		)
	}
	return rate, nil
}

// Invalidate drops the cached catalog so the next read refetches.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	if err := s.cache.Invalidate(ctx); err != nil {
		return fmt.Errorf("invalidate catalog cache: %w", err)
	}
	s.logger.InfoContext(ctx, "catalog cache invalidated")
	return nil
}

// Refresh refetches the catalog from the provider and overwrites the cache.
func (s *CatalogService) Refresh(ctx context.Context) error {
	products, err := s.fetchProducts(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.SetProducts(ctx, products); err != nil {
		return fmt.Errorf("cache products: %w", err)
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.ShippingRateID != "" {
		rate, err := s.provider(settings.SecretKey).GetShippingRate(ctx, settings.ShippingRateID)
		if err != nil {
			return apperrors.ProviderFailure(err)
		}
		if err := s.cache.SetShippingRate(ctx, rate); err != nil {
			return fmt.Errorf("cache shipping rate: %w", err)
		}
	}
	return nil
}

// RefreshLoop refreshes the cached catalog on a fixed interval until the
// context is cancelled.
func (s *CatalogService) RefreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.WarnContext(ctx, "catalog refresh failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// fetchProducts pulls the configured products from the provider. Unavailable
// products are skipped; fetch errors skip the product and log so that one
// failing lookup does not empty the storefront.
func (s *CatalogService) fetchProducts(ctx context.Context) ([]domain.Product, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	p := s.provider(settings.SecretKey)
	products := make([]domain.Product, 0, len(settings.ProductIDs))
	var lastErr error

	for _, id := range settings.ProductIDs {
		product, err := p.GetProduct(ctx, id)
		if err != nil {
			if errors.Is(err, provider.ErrProductUnavailable) {
				continue
			}
			lastErr = err
			s.logger.WarnContext(ctx, "product fetch failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
			continue
		}
		products = append(products, *product)
	}

	// Only fail when nothing could be fetched at all.
	if len(products) == 0 && lastErr != nil {
		return nil, apperrors.ProviderFailure(lastErr)
	}

	domain.SortProductsByPrice(products)
	return products, nil
}
