package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
)

// personaSection emits the persona's system prompt verbatim. It anchors the
// assistant's voice, so it always comes first.
type personaSection struct{}

func (s *personaSection) Name() string  { return "persona" }
func (s *personaSection) Priority() int { return 100 }

func (s *personaSection) Enabled(_ context.Context, pc *PromptContext) bool {
	return pc.Persona != nil && pc.Persona.SystemPrompt != ""
}

func (s *personaSection) Render(_ context.Context, pc *PromptContext) (string, error) {
	return strings.TrimSpace(pc.Persona.SystemPrompt), nil
}

// channelSection states output constraints for non-web channels. The web
// channel is unconstrained and gets nothing.
type channelSection struct{}

func (s *channelSection) Name() string  { return "channel" }
func (s *channelSection) Priority() int { return 200 }

func (s *channelSection) Enabled(_ context.Context, pc *PromptContext) bool {
	return pc.Channel != nil && pc.Channel.ID != "web"
}

func (s *channelSection) Render(_ context.Context, pc *PromptContext) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Channel: %s\n", pc.Channel.Name)
	if pc.Channel.MaxMessageLength > 0 {
		fmt.Fprintf(&sb, "Keep responses under %d characters.\n", pc.Channel.MaxMessageLength)
	}
	if len(pc.Channel.Capabilities) > 0 {
		fmt.Fprintf(&sb, "Available formatting: %s.", strings.Join(pc.Channel.Capabilities, ", "))
	}
	return strings.TrimSpace(sb.String()), nil
}

// platformSection injects per-runtime scripting guidance for code requests.
type platformSection struct{}

func (s *platformSection) Name() string  { return "platform" }
func (s *platformSection) Priority() int { return 300 }

func (s *platformSection) Enabled(_ context.Context, pc *PromptContext) bool {
	return pc.Kind != KindChat && pc.Platform != ""
}

func (s *platformSection) Render(_ context.Context, pc *PromptContext) (string, error) {
	switch pc.Platform {
	case entity.PlatformPowerShell:
		return powershellGuidance, nil
	case entity.PlatformAppleScript:
		return applescriptGuidance, nil
	case entity.PlatformBash:
		return bashGuidance, nil
	}
	return "", fmt.Errorf("no guidance for platform %q", pc.Platform)
}

const powershellGuidance = `## PowerShell Best Practices
- Use approved verbs (Get-, Set-, New-, Remove-) for any functions
- Declare inputs in a param() block with sensible defaults
- Wrap risky operations in try/catch and exit with a non-zero code on failure
- Report progress with Write-Host and use -WhatIf support where destructive
- Check for administrator rights before operations that require them`

const applescriptGuidance = `## AppleScript Best Practices
- Wrap operations in try blocks and surface failures with display dialog
- Scope application commands inside tell application blocks
- Add small delays when driving UI elements
- Finish with a display notification summarizing the result`

const bashGuidance = `## Bash Best Practices
- Start with set -euo pipefail
- Quote every variable expansion
- Verify required commands exist before using them (command -v)
- Install a trap to clean up temporary files on exit
- Print status messages so progress is visible`

// qualitySection states the bar every generated script has to clear.
type qualitySection struct{}

func (s *qualitySection) Name() string  { return "quality" }
func (s *qualitySection) Priority() int { return 400 }

func (s *qualitySection) Enabled(_ context.Context, pc *PromptContext) bool {
	return pc.Kind != KindChat
}

func (s *qualitySection) Render(_ context.Context, _ *PromptContext) (string, error) {
	return `## Quality Requirements
- The script must run as-is, without placeholders to fill in
- Handle errors explicitly; never fail silently
- Comment the intent of non-obvious steps
- Prefer built-in tools over external dependencies`, nil
}

// outputFormatSection pins the response shape so the fence extractor can
// find the script.
type outputFormatSection struct{}

func (s *outputFormatSection) Name() string  { return "output-format" }
func (s *outputFormatSection) Priority() int { return 500 }

func (s *outputFormatSection) Enabled(_ context.Context, pc *PromptContext) bool {
	return pc.Kind == KindGenerate || pc.Kind == KindImprove
}

func (s *outputFormatSection) Render(_ context.Context, pc *PromptContext) (string, error) {
	return fmt.Sprintf(`## Output Format
Reply with a short explanation of what the script does, then exactly one
fenced code block tagged %q containing the complete script.`, pc.Platform.FenceTag()), nil
}
