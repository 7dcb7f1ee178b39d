package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// applyEnv overrides fields tagged with `env` from the process environment.
// Unset variables leave the current value alone.
func applyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}
