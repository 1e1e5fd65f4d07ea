package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/dressly/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Upstream services
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8002"`
	CartServiceURL    string `env:"CART_SERVICE_URL" envDefault:"http://localhost:8003"`

	// Per-line timeout for cart reconciliation calls.
	ReconcileTimeout time.Duration `env:"RECONCILE_TIMEOUT" envDefault:"10s"`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Selection session TTL in hours (default: 2 days)
	SessionTTL int `env:"SESSION_TTL_HOURS" envDefault:"48"`

	// Product cache TTL in seconds
	ProductCacheTTL int `env:"PRODUCT_CACHE_TTL_SECONDS" envDefault:"60"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Rate limiting
	RateLimitRPS   int `env:"RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int `env:"RATE_LIMIT_BURST" envDefault:"40"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
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
	if c.ProductServiceURL == "" {
		return fmt.Errorf("PRODUCT_SERVICE_URL is required")
	}
	if c.CartServiceURL == "" {
		return fmt.Errorf("CART_SERVICE_URL is required")
	}
	if c.ReconcileTimeout <= 0 {
		return fmt.Errorf("RECONCILE_TIMEOUT must be positive")
	}
	if c.OTELSampleRate < 0.0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
	}
	return nil
}
