package persona

import (
	"context"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/store/inmemory"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/workspace"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// Config holds the configuration for the Persona module.
// Follows K8S-style: Config → Complete() → New(ctx).
type Config struct {
	// Dir is the personas directory loaded at startup.
	Dir string

	// Watch enables fsnotify hot reload of the directory.
	Watch bool
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.Dir == "" {
		c.Dir = "personas"
	}
	return CompletedConfig{c}
}

// Module is the top-level Persona module.
type Module struct {
	Service service.PersonaService
	watcher *workspace.Watcher
}

// Close stops the directory watcher, if any.
func (m *Module) Close() error {
	m.watcher.Close()
	return nil
}

// New creates and initializes the Persona module from a completed config.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	svc := service.NewPersonaService(inmemory.NewPersonaStore())
	if _, err := svc.LoadAll(c.Dir); err != nil {
		return nil, err
	}

	m := &Module{Service: svc}
	if c.Watch {
		m.watcher = workspace.New(c.Dir, func() {
			if _, err := svc.Reload(); err != nil {
				logger.Warn("[Persona] reload failed: %v", err)
			}
		})
	}
	return m, nil
}
