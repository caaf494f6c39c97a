package prompt

import (
	"context"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
)

// PromptKind selects the assembly shape for one request.
type PromptKind string

const (
	KindChat     PromptKind = "chat"
	KindGenerate PromptKind = "generate"
	KindImprove  PromptKind = "improve"
	KindValidate PromptKind = "validate"
)

// PersonaPromptInfo mirrors the persona fields sections need without
// importing the persona package.
type PersonaPromptInfo struct {
	ID           string
	Name         string
	SystemPrompt string
}

// ChannelPromptInfo mirrors the channel fields sections need.
type ChannelPromptInfo struct {
	ID               string
	Name             string
	MaxMessageLength int
	Capabilities     []string
}

// PromptContext is the data envelope passed to every PromptSection.Render().
type PromptContext struct {
	Kind    PromptKind
	Persona *PersonaPromptInfo
	Channel *ChannelPromptInfo

	// Platform is set for generate/improve/validate requests.
	Platform entity.Platform

	// Request is the user's natural-language ask.
	Request string

	// PriorScript carries the existing script for improve/validate.
	PriorScript string

	// Feedback carries the user's improvement notes for improve.
	Feedback string

	// History is the trimmed conversation context, oldest first.
	History []llmentity.ChatMessage

	Now time.Time
}

// PromptSection renders one logical segment of the system prompt.
// Sections are assembled in Priority order by the Pipeline.
type PromptSection interface {
	// Name returns the unique identifier of this section.
	Name() string

	// Priority determines assembly order (lower = earlier in prompt).
	Priority() int

	// Enabled returns whether this section should appear for the context.
	Enabled(ctx context.Context, pc *PromptContext) bool

	// Render produces the text for this section. Empty string skips it.
	// A non-nil error is logged but does not abort the pipeline.
	Render(ctx context.Context, pc *PromptContext) (string, error)
}
