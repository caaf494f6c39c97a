package spi

import (
	"context"
	"net/http"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
)

// Binding is one configured provider endpoint ready to serve requests.
type Binding interface {
	// Name returns the configured provider name (not the kind).
	Name() string

	// Descriptor identifies the binding for status reporting.
	Descriptor() entity.ProviderDescriptor

	// Generate sends the envelope and returns a completion. Failures must be
	// returned as *entity.GenerationError so the gateway can decide whether
	// to fall back.
	Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error)

	// Probe performs a lightweight availability check. It should be cheap
	// and respect the context deadline.
	Probe(ctx context.Context) error
}

// BindingFactory builds a Binding for a named provider from its config.
// The client is shared across bindings and carries the hard upper timeout.
type BindingFactory func(name string, cfg *options.ProviderConfig, client *http.Client) (Binding, error)
