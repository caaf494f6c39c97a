package service

import (
	"context"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
)

// Gateway routes prompt envelopes to providers with health-aware fallback.
type Gateway interface {
	// Generate tries providers in order until one succeeds. A bad request
	// aborts the cascade immediately; when every candidate fails the error
	// is an unavailable *entity.GenerationError.
	Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error)

	// Statuses reports every configured provider and its health.
	Statuses() []entity.ProviderStatus

	// Available reports whether at least one provider is not unavailable.
	Available() bool
}
