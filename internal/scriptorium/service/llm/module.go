package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/helper"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/store/inmemory"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// Config holds the configuration for the LLM module.
type Config struct {
	Options *options.LLMOptions

	// OutOfTreeRegistry allows registering binding factories beyond the
	// built-in kinds. If nil, only in-tree kinds are available.
	OutOfTreeRegistry *provider.Registry
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete validates and fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.Options == nil {
		c.Options = options.NewLLMOptions()
	}
	return CompletedConfig{c}
}

// Module is the top-level LLM module.
//
// It exposes:
// - Gateway: health-aware request routing with fallback
// - Prober: periodic availability sweeps
// - Registry: binding factory registry
type Module struct {
	Gateway  service.Gateway
	Prober   *service.Prober
	Registry *provider.Registry
}

// New creates and initializes the LLM module from a completed config.
//
// Initialization flow:
// 1. Build the in-tree binding registry, merge out-of-tree factories
// 2. Instantiate one binding per configured provider over a shared client
// 3. Create the gateway and the prober over the provider store
func (c CompletedConfig) New(ctx context.Context) (*Module, error) {
	logger.Info("[LLM] creating LLM module...")

	registry := provider.NewInTreeRegistry()
	if c.OutOfTreeRegistry != nil {
		if err := registry.Merge(c.OutOfTreeRegistry); err != nil {
			return nil, fmt.Errorf("failed to merge out-of-tree providers: %w", err)
		}
	}

	client := helper.NewHTTPClient(time.Duration(c.Options.ProviderMaxTimeoutMs) * time.Millisecond)
	store := inmemory.NewProviderStore()

	for _, name := range providerNames(c.Options) {
		cfg := c.Options.Providers[name]
		factory, err := registry.Get(cfg.Kind)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		binding, err := factory(name, cfg, client)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", name, err)
		}
		store.Put(name, binding)
	}
	logger.Info("[LLM] configured %d providers (default=%s)", len(store.Names()), c.Options.DefaultProvider)

	gw := service.NewGateway(store, c.Options)
	prober := service.NewProber(store,
		time.Duration(c.Options.ProbeIntervalSeconds)*time.Second,
		time.Duration(c.Options.HealthTimeoutMs)*time.Millisecond)
	prober.Start(ctx)

	return &Module{
		Gateway:  gw,
		Prober:   prober,
		Registry: registry,
	}, nil
}

// providerNames yields configured providers in fallback order, then the rest.
func providerNames(opts *options.LLMOptions) []string {
	seen := make(map[string]bool, len(opts.Providers))
	var names []string
	for _, name := range opts.Order {
		if _, ok := opts.Providers[name]; ok && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for name := range opts.Providers {
		if !seen[name] {
			names = append(names, name)
		}
	}
	return names
}

// Close stops the background prober.
func (m *Module) Close() {
	m.Prober.Stop()
}

// Generate routes an envelope through the gateway.
func (m *Module) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	return m.Gateway.Generate(ctx, env)
}
