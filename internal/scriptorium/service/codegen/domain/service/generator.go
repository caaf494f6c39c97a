package service

import (
	"context"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/prompt"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
)

// ChatRequest is a conversational turn with no script expectation.
type ChatRequest struct {
	Message           string
	Persona           *prompt.PersonaPromptInfo
	Channel           *prompt.ChannelPromptInfo
	History           []llmentity.ChatMessage
	PreferredProvider string
}

// GenerateRequest asks for a new script from a natural-language description.
type GenerateRequest struct {
	Request           string
	Platform          entity.Platform
	Policy            safetyentity.Policy
	Persona           *prompt.PersonaPromptInfo
	Channel           *prompt.ChannelPromptInfo
	History           []llmentity.ChatMessage
	PreferredProvider string
}

// ImproveRequest asks for a revision of an existing script.
type ImproveRequest struct {
	Script            string
	Platform          entity.Platform
	Feedback          string
	Policy            safetyentity.Policy
	Persona           *prompt.PersonaPromptInfo
	PreferredProvider string
}

// ValidateRequest asks for a review of an existing script.
type ValidateRequest struct {
	Script            string
	Platform          entity.Platform
	Policy            safetyentity.Policy
	PreferredProvider string
}

// Generator is the code generation facade: prompt assembly, provider calls,
// template fallback and safety screening behind one interface.
type Generator interface {
	// Chat returns a plain conversational reply.
	Chat(ctx context.Context, req ChatRequest) (*llmentity.Completion, error)

	// Generate produces a script. When no provider is reachable it degrades
	// to the deterministic template catalog instead of failing.
	Generate(ctx context.Context, req GenerateRequest) (*entity.Script, error)

	// Improve revises an existing script. Requires a reachable provider.
	Improve(ctx context.Context, req ImproveRequest) (*entity.Script, error)

	// Validate reviews a script. Rule findings are always present; model
	// review is appended when a provider is reachable.
	Validate(ctx context.Context, req ValidateRequest) (*entity.ValidationReport, error)
}
