// Package stripe implements the payment provider port against the Stripe API.
package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/alex90271/stripecheckout/internal/domain"
	"github.com/alex90271/stripecheckout/internal/provider"
)

// Allowed shipping destinations for the hosted page.
var allowedCountries = []string{"US", "CA"}

// Client is a Stripe-backed Provider bound to one API key.
type Client struct {
	api *client.API
}

// New creates a provider bound to the given secret key.
func New(secretKey string) provider.Provider {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Client{api: api}
}

// Factory is the provider.Factory for Stripe.
func Factory(secretKey string) provider.Provider {
	return New(secretKey)
}

func (c *Client) Name() string {
	return "stripe"
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	params := &stripe.ProductParams{}
	params.Context = ctx
	params.AddExpand("default_price")

	p, err := c.api.Products.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get product %s: %w", id, err)
	}
	if !p.Active || p.DefaultPrice == nil || p.DefaultPrice.UnitAmount == 0 {
		return nil, provider.ErrProductUnavailable
	}

	product := &domain.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.DefaultPrice.UnitAmount,
		Currency:    string(p.DefaultPrice.Currency),
		PriceID:     p.DefaultPrice.ID,
	}
	if len(p.Images) > 0 {
		product.ImageURL = p.Images[0]
	}
	return product, nil
}

func (c *Client) GetShippingRate(ctx context.Context, id string) (*domain.ShippingRate, error) {
	params := &stripe.ShippingRateParams{}
	params.Context = ctx

	sr, err := c.api.ShippingRates.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get shipping rate %s: %w", id, err)
	}
	rate := &domain.ShippingRate{DisplayName: sr.DisplayName}
	if sr.FixedAmount != nil {
		rate.Amount = sr.FixedAmount.Amount
		rate.Currency = string(sr.FixedAmount.Currency)
	}
	return rate, nil
}

func (c *Client) CreateSession(ctx context.Context, input *provider.SessionInput) (*domain.CheckoutSession, error) {
	lines := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.Lines))
	for _, line := range input.Lines {
		lines = append(lines, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(line.PriceID),
			Quantity: stripe.Int64(line.Quantity),
			AdjustableQuantity: &stripe.CheckoutSessionLineItemAdjustableQuantityParams{
				Enabled: stripe.Bool(true),
				Minimum: stripe.Int64(1),
				Maximum: stripe.Int64(line.MaxQuantity),
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:  lines,
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice(allowedCountries),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	if input.ShippingRateID != "" {
		params.ShippingOptions = []*stripe.CheckoutSessionShippingOptionParams{
			{ShippingRate: stripe.String(input.ShippingRateID)},
		}
	}
	if input.EnableInvoice {
		params.InvoiceCreation = &stripe.CheckoutSessionInvoiceCreationParams{
			Enabled: stripe.Bool(true),
		}
	}

	customText := &stripe.CheckoutSessionCustomTextParams{}
	hasCustomText := false
	if input.ShippingMessage != "" {
		customText.ShippingAddress = &stripe.CheckoutSessionCustomTextShippingAddressParams{
			Message: stripe.String(input.ShippingMessage),
		}
		hasCustomText = true
	}
	if input.SubmitMessage != "" {
		customText.Submit = &stripe.CheckoutSessionCustomTextSubmitParams{
			Message: stripe.String(input.SubmitMessage),
		}
		hasCustomText = true
	}
	if hasCustomText {
		params.CustomText = customText
	}
	if input.ConsentMessage != "" {
		params.ConsentCollection = &stripe.CheckoutSessionConsentCollectionParams{
			TermsOfService: stripe.String(string(stripe.CheckoutSessionConsentCollectionTermsOfServiceRequired)),
		}
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	return &domain.CheckoutSession{
		ID:        s.ID,
		URL:       s.URL,
		Status:    string(s.Status),
		CreatedAt: time.Unix(s.Created, 0).UTC(),
	}, nil
}

func (c *Client) SessionLineItems(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: get session %s: %w", sessionID, err)
	}
	if s.LineItems == nil {
		return nil, nil
	}

	items := make([]domain.LineItem, 0, len(s.LineItems.Data))
	for _, li := range s.LineItems.Data {
		items = append(items, domain.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
		})
	}
	return items, nil
}

func (c *Client) SetPaymentDescription(ctx context.Context, paymentIntentID, description string) error {
	params := &stripe.PaymentIntentParams{
		Description: stripe.String(description),
	}
	params.Context = ctx

	if _, err := c.api.PaymentIntents.Update(paymentIntentID, params); err != nil {
		return fmt.Errorf("stripe: update payment %s: %w", paymentIntentID, err)
	}
	return nil
}

func (c *Client) PaymentReceiptURL(ctx context.Context, paymentIntentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := c.api.PaymentIntents.Get(paymentIntentID, params)
	if err != nil {
		return "", fmt.Errorf("stripe: get payment %s: %w", paymentIntentID, err)
	}
	if pi.LatestCharge == nil {
		return "", nil
	}
	return pi.LatestCharge.ReceiptURL, nil
}
