package codegen

import (
	"context"
	"fmt"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/service"
	llmservice "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/service"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
)

// Config holds the configuration for the Codegen module.
type Config struct {
	Gateway   llmservice.Gateway
	Validator safetyservice.Validator
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	return CompletedConfig{c}
}

// Module is the top-level Codegen module.
type Module struct {
	Generator service.Generator
}

// New creates the Codegen module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	if c.Gateway == nil {
		return nil, fmt.Errorf("codegen requires the LLM gateway")
	}
	if c.Validator == nil {
		return nil, fmt.Errorf("codegen requires the safety validator")
	}
	return &Module{Generator: service.NewGenerator(c.Gateway, c.Validator)}, nil
}
