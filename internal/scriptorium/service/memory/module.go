package memory

import (
	"context"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/memory/domain/service"
)

const (
	defaultMaxConversations = 100
	defaultMaxMessages      = 50
)

// Config holds the configuration for the Memory module.
type Config struct {
	MaxConversations           int
	MaxMessagesPerConversation int
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills in defaults.
func (c *Config) Complete() CompletedConfig {
	if c.MaxConversations <= 0 {
		c.MaxConversations = defaultMaxConversations
	}
	if c.MaxMessagesPerConversation <= 0 {
		c.MaxMessagesPerConversation = defaultMaxMessages
	}
	return CompletedConfig{c}
}

// Module is the top-level Memory module.
type Module struct {
	Service service.MemoryService
}

// New creates the Memory module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	return &Module{
		Service: service.NewMemoryService(c.MaxConversations, c.MaxMessagesPerConversation),
	}, nil
}
