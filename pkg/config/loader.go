// Package config loads configuration structs from environment variables via
// `env` struct tags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg. Fields without a matching
// variable keep their `envDefault`; fields tagged required fail the parse
// when unset.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
