package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/alex90271/stripecheckout/pkg/config"
)

// Config holds all configuration for the checkout service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Site identity, substituted into operator message templates.
	SiteName string `env:"SITE_NAME" envDefault:"Storefront"`
	SiteURL  string `env:"SITE_URL" envDefault:"http://localhost:8080"`

	// Redirect targets for the hosted checkout page.
	SuccessURL string `env:"CHECKOUT_SUCCESS_URL" envDefault:"http://localhost:8080/checkout/success"`
	CancelURL  string `env:"CHECKOUT_CANCEL_URL" envDefault:"http://localhost:8080/checkout/cancel"`

	// PostgreSQL (settings store)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"checkout"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"checkout_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"checkout_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Redis (catalog cache and webhook dedup)
	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cache TTLs
	ProductCacheTTL  time.Duration `env:"PRODUCT_CACHE_TTL" envDefault:"10m"`
	ShippingCacheTTL time.Duration `env:"SHIPPING_CACHE_TTL" envDefault:"10m"`
	SeenEventTTL     time.Duration `env:"SEEN_EVENT_TTL" envDefault:"24h"`

	// Background catalog refresh; 0 disables the refresh loop.
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"5m"`

	// Kafka. Topic names are part of the event contract and live with the
	// event definitions.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Settings encryption key, 64 hex chars (generate with `openssl rand -hex 32`).
	SettingsKey string `env:"SETTINGS_ENCRYPTION_KEY,required"`

	// SMTP for order notification mail
	SMTPHost string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"SMTP_USER" envDefault:""`
	SMTPPass string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"orders@localhost"`

	// GroupMe bot endpoint
	GroupMeURL string `env:"GROUPME_BOT_URL" envDefault:"https://api.groupme.com/v3/bots/post"`

	// Circuit breaker settings for outbound notification calls
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresUser == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if len(c.SettingsKey) != 64 {
		return fmt.Errorf("SETTINGS_ENCRYPTION_KEY must be 64 hex characters")
	}
	if c.ProductCacheTTL <= 0 || c.ShippingCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	for name, rawURL := range map[string]string{
		"SITE_URL":             c.SiteURL,
		"CHECKOUT_SUCCESS_URL": c.SuccessURL,
		"CHECKOUT_CANCEL_URL":  c.CancelURL,
		"GROUPME_BOT_URL":      c.GroupMeURL,
	} {
		if rawURL == "" {
			return fmt.Errorf("%s is required", name)
		}
		if _, err := url.ParseRequestURI(rawURL); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, rawURL, err)
		}
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPass, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSL,
	)
}

// RedisAddr returns the Redis host:port address.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
