package prompt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
)

func chatContext() *PromptContext {
	return &PromptContext{
		Kind: KindChat,
		Persona: &PersonaPromptInfo{
			ID:           "pirate",
			Name:         "Pirate",
			SystemPrompt: "You are a pirate assistant.",
		},
		Channel: &ChannelPromptInfo{
			ID:               "twitch",
			Name:             "Twitch",
			MaxMessageLength: 500,
			Capabilities:     []string{"emotes"},
		},
		Request: "tell me a joke",
		Now:     time.Now(),
	}
}

func TestPipeline_ChatPromptSections(t *testing.T) {
	p := NewPipeline()

	system, err := p.Assemble(context.Background(), chatContext())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(system, "You are a pirate assistant."))
	assert.Contains(t, system, "## Channel: Twitch")
	assert.Contains(t, system, "under 500 characters")
	// Chat requests carry no scripting guidance.
	assert.NotContains(t, system, "Best Practices")
	assert.NotContains(t, system, "## Output Format")
}

func TestPipeline_WebChannelAddsNoConstraints(t *testing.T) {
	p := NewPipeline()
	pc := chatContext()
	pc.Channel = &ChannelPromptInfo{ID: "web", Name: "Web"}

	system, err := p.Assemble(context.Background(), pc)
	require.NoError(t, err)
	assert.NotContains(t, system, "## Channel")
}

func TestPipeline_GeneratePromptSections(t *testing.T) {
	p := NewPipeline()
	pc := chatContext()
	pc.Kind = KindGenerate
	pc.Platform = entity.PlatformBash

	system, err := p.Assemble(context.Background(), pc)
	require.NoError(t, err)
	assert.Contains(t, system, "## Bash Best Practices")
	assert.Contains(t, system, "## Quality Requirements")
	assert.Contains(t, system, "## Output Format")
}

func TestPipeline_SectionOrderFollowsPriority(t *testing.T) {
	p := NewPipeline()
	pc := chatContext()
	pc.Kind = KindGenerate
	pc.Platform = entity.PlatformPowerShell

	system, err := p.Assemble(context.Background(), pc)
	require.NoError(t, err)

	persona := strings.Index(system, "You are a pirate assistant.")
	channel := strings.Index(system, "## Channel: Twitch")
	platform := strings.Index(system, "## PowerShell Best Practices")
	format := strings.Index(system, "## Output Format")
	assert.True(t, persona < channel && channel < platform && platform < format)
}

func TestAssembler_BuildEnvelope(t *testing.T) {
	a := NewAssembler()
	pc := chatContext()
	pc.History = []llmentity.ChatMessage{
		{Role: llmentity.ChatRoleUser, Content: "earlier question"},
		{Role: llmentity.ChatRoleAssistant, Content: "earlier answer"},
	}

	env, err := a.BuildEnvelope(context.Background(), pc)
	require.NoError(t, err)
	assert.NotEmpty(t, env.SystemPrompt)
	require.Len(t, env.Messages, 3)
	assert.Equal(t, "earlier question", env.Messages[0].Content)
	assert.Equal(t, llmentity.ChatRoleUser, env.Messages[2].Role)
	assert.Equal(t, "tell me a joke", env.Messages[2].Content)
}

func TestAssembler_FinalTurnPerKind(t *testing.T) {
	a := NewAssembler()

	pc := &PromptContext{
		Kind:     KindGenerate,
		Platform: entity.PlatformBash,
		Request:  "rotate the logs",
		Now:      time.Now(),
	}
	env, err := a.BuildEnvelope(context.Background(), pc)
	require.NoError(t, err)
	last := env.Messages[len(env.Messages)-1].Content
	assert.Contains(t, last, "Write a bash script")
	assert.Contains(t, last, "rotate the logs")

	pc.Kind = KindImprove
	pc.PriorScript = "echo old"
	pc.Feedback = "add logging"
	env, err = a.BuildEnvelope(context.Background(), pc)
	require.NoError(t, err)
	last = env.Messages[len(env.Messages)-1].Content
	assert.Contains(t, last, "Feedback: add logging")
	assert.Contains(t, last, "echo old")

	pc.Kind = KindValidate
	env, err = a.BuildEnvelope(context.Background(), pc)
	require.NoError(t, err)
	last = env.Messages[len(env.Messages)-1].Content
	assert.Contains(t, last, "do not rewrite the script")
}

func TestPipeline_RegisterSectionSorts(t *testing.T) {
	p := NewPipeline()
	before := p.SectionCount()

	p.RegisterSection(&stubSection{name: "first", priority: 1, text: "INJECTED FIRST"})

	assert.Equal(t, before+1, p.SectionCount())
	system, err := p.Assemble(context.Background(), chatContext())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(system, "INJECTED FIRST"))
}

type stubSection struct {
	name     string
	priority int
	text     string
}

func (s *stubSection) Name() string  { return s.name }
func (s *stubSection) Priority() int { return s.priority }

func (s *stubSection) Enabled(context.Context, *PromptContext) bool { return true }

func (s *stubSection) Render(context.Context, *PromptContext) (string, error) {
	return s.text, nil
}
