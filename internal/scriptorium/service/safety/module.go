package safety

import (
	"context"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
)

// Config holds the configuration for the Safety module.
type Config struct{}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	return CompletedConfig{c}
}

// Module is the top-level Safety module.
type Module struct {
	Validator service.Validator
}

// New creates the Safety module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	return &Module{Validator: service.NewValidator()}, nil
}
