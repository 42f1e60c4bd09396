package domain

import "strings"

// Setting keys as stored in the settings table. Secret-valued keys are
// encrypted at rest; the repository decrypts them on read.
const (
	SettingSecretKey            = "stripe_secret_key"
	SettingWebhookSecret        = "stripe_webhook_secret"
	SettingShippingRateID       = "stripe_shipping_rate_id"
	SettingProductIDs           = "stripe_product_ids"
	SettingMaxQuantityPerItem   = "max_quantity_per_item"
	SettingEnableInvoices       = "stripe_enable_invoice_creation"
	SettingDisableStore         = "stripe_disable_store"
	SettingStoreDisabledMessage = "stripe_store_disabled_message"
	SettingTimezone             = "stripe_timezone"
	SettingAdminEmail           = "admin_email"
	SettingGroupMeEnabled       = "enable_groupme_notifications"
	SettingGroupMeBotID         = "groupme_bot_id"
	SettingGroupMeGroupID       = "groupme_group_id"
	SettingConsentMessage       = "checkout_consent_message"
	SettingShippingMessage      = "checkout_shipping_message"
	SettingReceiptMessage       = "checkout_receipt_message"
)

// SecretSettingKeys lists the keys whose values are encrypted at rest.
var SecretSettingKeys = map[string]bool{
	SettingSecretKey:     true,
	SettingWebhookSecret: true,
}

// Settings is the operator configuration consumed by the checkout pipeline.
// It is loaded from the settings store per request; there is no in-process
// settings cache, so operator changes take effect immediately.
type Settings struct {
	SecretKey            string
	WebhookSecret        string
	ShippingRateID       string
	ProductIDs           []string
	MaxQuantityPerItem   int
	EnableInvoices       bool
	DisableStore         bool
	StoreDisabledMessage string
	Timezone             string
	AdminEmail           string
	GroupMeEnabled       bool
	GroupMeBotID         string
	GroupMeGroupID       string
	ConsentMessage       string
	ShippingMessage      string
	ReceiptMessage       string
}

const (
	// Quantity limits are bounded 1-99; values outside the range fall back
	// to the default rather than failing the request.
	DefaultMaxQuantityPerItem = 10
	MinQuantityLimit          = 1
	MaxQuantityLimit          = 99

	DefaultTimezone = "America/Denver"
)

// EffectiveMaxQuantity returns the configured per-item cap clamped to the
// allowed 1-99 range, falling back to the default when unset or out of range.
func (s *Settings) EffectiveMaxQuantity() int {
	if s.MaxQuantityPerItem < MinQuantityLimit || s.MaxQuantityPerItem > MaxQuantityLimit {
		return DefaultMaxQuantityPerItem
	}
	return s.MaxQuantityPerItem
}

// EffectiveTimezone returns the operator timezone, defaulting when unset.
func (s *Settings) EffectiveTimezone() string {
	if s.Timezone == "" {
		return DefaultTimezone
	}
	return s.Timezone
}

// RenderTemplate substitutes {site_name} and {site_url} placeholders in an
// operator-authored message template.
func RenderTemplate(template, siteName, siteURL string) string {
	out := strings.ReplaceAll(template, "{site_name}", siteName)
	return strings.ReplaceAll(out, "{site_url}", siteURL)
}

// ParseProductIDs splits a newline-separated product-id list, trimming blanks.
func ParseProductIDs(raw string) []string {
	var ids []string
	for _, line := range strings.Split(raw, "\n") {
		if id := strings.TrimSpace(line); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
