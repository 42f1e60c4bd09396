package domain

import (
	"sort"
	"time"
)

// Product is a normalized view of a provider product. It is read-only to this
// service: the provider owns the catalog, we only cache and render it.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// UnitPrice is in minor currency units (cents).
	UnitPrice int64  `json:"price"`
	Currency  string `json:"currency"`
	// PriceID is the provider's identifier for the current default price.
	// Checkout sessions reference it directly so the client can never
	// supply its own price.
	PriceID  string `json:"-"`
	ImageURL string `json:"image,omitempty"`
}

// ShippingRate is the configured flat shipping option, cached with its own TTL
// independent of the product cache.
type ShippingRate struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	DisplayName string `json:"display_name"`
}

// SortProductsByPrice orders products ascending by unit price, matching the
// storefront display order.
func SortProductsByPrice(products []Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].UnitPrice < products[j].UnitPrice
	})
}

// CheckoutSession is the provider-hosted payment page created for one
// checkout attempt. It is immutable here; status transitions happen
// provider-side and arrive via webhook.
type CheckoutSession struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
