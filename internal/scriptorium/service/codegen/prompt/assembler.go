package prompt

import (
	"context"
	"fmt"

	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
)

// Assembler turns a PromptContext into a provider-ready envelope.
type Assembler struct {
	pipeline *Pipeline
}

// NewAssembler creates an Assembler over the builtin section pipeline.
func NewAssembler() *Assembler {
	return &Assembler{pipeline: NewPipeline()}
}

// Pipeline exposes the underlying pipeline for out-of-tree sections.
func (a *Assembler) Pipeline() *Pipeline {
	return a.pipeline
}

// BuildEnvelope assembles the system prompt and message list for a request.
func (a *Assembler) BuildEnvelope(ctx context.Context, pc *PromptContext) (*llmentity.PromptEnvelope, error) {
	system, err := a.pipeline.Assemble(ctx, pc)
	if err != nil {
		return nil, err
	}

	env := &llmentity.PromptEnvelope{SystemPrompt: system}
	env.Messages = append(env.Messages, pc.History...)
	env.Messages = append(env.Messages, llmentity.ChatMessage{
		Role:    llmentity.ChatRoleUser,
		Content: a.finalTurn(pc),
	})
	return env, nil
}

// finalTurn builds the last user message from the request kind.
func (a *Assembler) finalTurn(pc *PromptContext) string {
	switch pc.Kind {
	case KindImprove:
		return fmt.Sprintf(
			"Improve the following %s script.\n\nFeedback: %s\n\nCurrent script:\n```%s\n%s\n```",
			pc.Platform, pc.Feedback, pc.Platform.FenceTag(), pc.PriorScript)
	case KindValidate:
		return fmt.Sprintf(
			"Review the following %s script for correctness, safety and style; "+
				"do not rewrite the script. Respond with a single JSON object and no other text: "+
				`{"score": <integer 0-100>, "issues": [{"severity": "warning" or "error", `+
				`"message": "<finding>", "line": <line number, optional>}], `+
				`"recommendations": ["<suggestion>"]}`+
				"\n\n```%s\n%s\n```",
			pc.Platform, pc.Platform.FenceTag(), pc.PriorScript)
	case KindGenerate:
		return fmt.Sprintf("Write a %s script for this request: %s", pc.Platform, pc.Request)
	default:
		return pc.Request
	}
}
