package config

import (
	"fmt"

	pkgconfig "github.com/a-bjn/sudexpert-storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort      int  `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
	SecureCookies bool `env:"STOREFRONT_SECURE_COOKIES" envDefault:"false"`

	// Commerce backend
	BackendURL     string `env:"BACKEND_URL" envDefault:"http://localhost:8081/api"`
	BackendBreaker bool   `env:"BACKEND_CIRCUIT_BREAKER" envDefault:"true"`

	// Payment processor. Provider "mock" confirms every intent; "stripe"
	// talks to the real API and needs a secret key.
	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	StripeAPIBase   string `env:"STRIPE_API_BASE" envDefault:"https://api.stripe.com"`
	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// SessionTTLHours bounds how long session-keyed data (cart, credentials,
	// checkout progress) survives without activity.
	SessionTTLHours int `env:"SESSION_TTL_HOURS" envDefault:"720"`

	// CatalogCacheTTLMinutes bounds how long cached catalog snapshots are
	// served before the next read goes back to the commerce backend.
	CatalogCacheTTLMinutes int `env:"CATALOG_CACHE_TTL_MINUTES" envDefault:"5"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
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
	if c.BackendURL == "" {
		return fmt.Errorf("backend URL is required")
	}
	switch c.PaymentProvider {
	case "mock":
	case "stripe":
		if c.StripeSecretKey == "" {
			return fmt.Errorf("stripe provider requires STRIPE_SECRET_KEY")
		}
	default:
		return fmt.Errorf("unknown payment provider: %s", c.PaymentProvider)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("session TTL must be at least one hour")
	}
	if c.CatalogCacheTTLMinutes < 1 {
		return fmt.Errorf("catalog cache TTL must be at least one minute")
	}
	return nil
}
