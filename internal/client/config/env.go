package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// loadDotEnv exports the variables of ./.env that are not already set.
// A missing file is not an error.
func loadDotEnv() {
	_ = godotenv.Load()
}

// parseEnv overlays cfg with the variables named in its env tags. Unset
// variables leave the field alone. A nil environ means the process
// environment.
func parseEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
