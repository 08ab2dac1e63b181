// Package config reads typed configuration structs from process
// environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from the environment. Fields declare their variable
// name with an `env` tag and may carry `envDefault` and `envSeparator`
// tags, so a zero-value struct loads to usable defaults:
//
//	type HTTP struct {
//	    Port    int           `env:"HTTP_PORT" envDefault:"8080"`
//	    Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
//	}
//
// cfg must be a pointer to a struct. Values that fail to parse into
// the field type are reported as an error rather than silently zeroed.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
