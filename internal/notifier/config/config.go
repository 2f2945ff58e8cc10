package config

import (
	"fmt"

	pkgconfig "github.com/a-bjn/sudexpert-storefront/pkg/config"
)

// Config holds all configuration for the notifier service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"NOTIFIER_HTTP_PORT" envDefault:"8090"`

	// Per-IP submission cap per hour, backed by the audit table.
	HourlyLimit int `env:"NOTIFIER_HOURLY_LIMIT" envDefault:"10"`

	// Transport-level token bucket in front of the handler.
	RateLimitRPS   int `env:"NOTIFIER_RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst int `env:"NOTIFIER_RATE_LIMIT_BURST" envDefault:"10"`

	// Email delivery. Sender "mock" logs instead of dialing a relay.
	EmailSender string   `env:"NOTIFIER_EMAIL_SENDER" envDefault:"mock"`
	Recipients  []string `env:"NOTIFIER_RECIPIENTS" envDefault:"sales@sudexpert.ro" envSeparator:","`
	SMTPHost    string   `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort    int      `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser    string   `env:"SMTP_USERNAME"`
	SMTPPass    string   `env:"SMTP_PASSWORD"`
	SMTPFrom    string   `env:"SMTP_FROM" envDefault:"noreply@sudexpert.ro"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"sudexpert"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"sudexpert_secret"`
	PostgresDB   string `env:"NOTIFIER_DB_NAME" envDefault:"notifier_db"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load notifier config: %w", err)
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
	if c.HourlyLimit < 1 {
		return fmt.Errorf("hourly limit must be at least 1")
	}
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	switch c.EmailSender {
	case "mock", "smtp":
	default:
		return fmt.Errorf("unknown email sender: %s", c.EmailSender)
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
