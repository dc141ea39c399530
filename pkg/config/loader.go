package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by config structs that carry invariants the env
// tags cannot express, such as cross-field constraints.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg using `env` tags, then runs
// cfg.Validate when it implements Validator.
//
// Example:
//
//	type Config struct {
//	    CoreAPIURL string `env:"CORE_API_URL" envDefault:"http://localhost:8000"`
//	    RedisAddr  string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
//	    CartTTL    int    `env:"CART_TTL_HOURS" envDefault:"168"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
