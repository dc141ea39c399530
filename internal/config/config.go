package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/arca-mz/storefront/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// ARCA core API
	CoreAPIURL     string `env:"CORE_API_URL" envDefault:"http://localhost:8000"`
	CoreAPITimeout int    `env:"CORE_API_TIMEOUT_SECONDS" envDefault:"30"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Session token TTL in hours (default: 24 hours)
	TokenTTL int `env:"TOKEN_TTL_HOURS" envDefault:"24"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
}

// Load reads configuration from environment variables. Validate runs as
// part of the load.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CoreAPIURL == "" {
		return fmt.Errorf("core api url is required")
	}
	if strings.HasSuffix(c.CoreAPIURL, "/") {
		return fmt.Errorf("core api url must not end with a slash: %s", c.CoreAPIURL)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart ttl must be at least one hour: %d", c.CartTTL)
	}
	if c.TokenTTL < 1 {
		return fmt.Errorf("token ttl must be at least one hour: %d", c.TokenTTL)
	}
	return nil
}
