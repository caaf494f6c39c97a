package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
)

// fakeGateway returns a canned completion or error for every request.
type fakeGateway struct {
	text string
	err  error

	lastEnvelope *llmentity.PromptEnvelope
}

func (f *fakeGateway) Generate(_ context.Context, env *llmentity.PromptEnvelope) (*llmentity.Completion, error) {
	f.lastEnvelope = env
	if f.err != nil {
		return nil, f.err
	}
	return &llmentity.Completion{Text: f.text, ProviderName: "fake", Model: "fake-model"}, nil
}

func (f *fakeGateway) Statuses() []llmentity.ProviderStatus { return nil }

func (f *fakeGateway) Available() bool { return f.err == nil }

func newTestGenerator(gw *fakeGateway) Generator {
	return NewGenerator(gw, safetyservice.NewValidator())
}

func TestGenerate_UsesModelReply(t *testing.T) {
	gw := &fakeGateway{text: "Here you go.\n```bash\n#!/usr/bin/env bash\nset -euo pipefail\necho backup\n```"}
	gen := newTestGenerator(gw)

	script, err := gen.Generate(context.Background(), GenerateRequest{
		Request:  "backup my files",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceLLM, script.Source)
	assert.Contains(t, script.Content, "echo backup")
	assert.Equal(t, "backup-my-files.sh", script.Filename)
	require.NotNil(t, script.Safety)
	assert.True(t, script.Safety.Allowed)
}

func TestGenerate_FallsBackToTemplateOnGatewayFailure(t *testing.T) {
	gw := &fakeGateway{err: llmentity.NewGenerationError(llmentity.FailureUnavailable, "fake", "all providers down", nil)}
	gen := newTestGenerator(gw)

	script, err := gen.Generate(context.Background(), GenerateRequest{
		Request:  "backup my files",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceTemplate, script.Source)
	assert.Contains(t, script.Content, "#!/usr/bin/env bash")
	require.NotNil(t, script.Safety)
}

func TestGenerate_FallsBackWhenReplyHasNoFence(t *testing.T) {
	gw := &fakeGateway{text: "I cannot write scripts today, sorry."}
	gen := newTestGenerator(gw)

	script, err := gen.Generate(context.Background(), GenerateRequest{
		Request:  "check cpu usage",
		Platform: entity.PlatformPowerShell,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceTemplate, script.Source)
	assert.Equal(t, entity.PlatformPowerShell, script.Platform)
}

func TestGenerate_AttachesSafetyVerdict(t *testing.T) {
	gw := &fakeGateway{text: "```bash\nsudo rm -r /var/cache\n```"}
	gen := newTestGenerator(gw)

	script, err := gen.Generate(context.Background(), GenerateRequest{
		Request:  "clean caches",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicySafe,
	})
	require.NoError(t, err)
	require.NotNil(t, script.Safety)
	assert.False(t, script.Safety.Allowed)
}

func TestImprove_ErrorsWithoutFence(t *testing.T) {
	gw := &fakeGateway{text: "looks fine to me"}
	gen := newTestGenerator(gw)

	_, err := gen.Improve(context.Background(), ImproveRequest{
		Script:   "echo old",
		Platform: entity.PlatformBash,
		Feedback: "add error handling",
		Policy:   safetyentity.PolicyStandard,
	})
	require.Error(t, err)
	genErr, ok := llmentity.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, llmentity.FailureProtocol, genErr.Kind)
}

func TestImprove_ReturnsRevisedScript(t *testing.T) {
	gw := &fakeGateway{text: "Added a guard.\n```bash\n#!/usr/bin/env bash\nset -euo pipefail\necho new\n```"}
	gen := newTestGenerator(gw)

	script, err := gen.Improve(context.Background(), ImproveRequest{
		Script:   "echo old",
		Platform: entity.PlatformBash,
		Feedback: "add error handling",
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceLLM, script.Source)
	assert.Contains(t, script.Content, "echo new")
	assert.Contains(t, script.Documentation, "Added a guard.")
}

func TestValidate_RuleFindingsStandAloneWhenModelDown(t *testing.T) {
	gw := &fakeGateway{err: llmentity.NewGenerationError(llmentity.FailureUnavailable, "fake", "down", nil)}
	gen := newTestGenerator(gw)

	report, err := gen.Validate(context.Background(), ValidateRequest{
		Script:   "rm -rf /",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.False(t, report.Allowed)
	assert.Equal(t, entity.SourceTemplate, report.Source)
}

func TestValidate_MergesModelReview(t *testing.T) {
	gw := &fakeGateway{text: `{"score": 85, "issues": [{"severity": "warning", ` +
		`"message": "unquoted variable expansion", "line": 3}], ` +
		`"recommendations": ["Quote all parameter expansions"]}`}
	gen := newTestGenerator(gw)

	report, err := gen.Validate(context.Background(), ValidateRequest{
		Script:   "#!/usr/bin/env bash\nset -e\necho $name\n",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.True(t, report.Allowed)
	assert.Equal(t, entity.SourceLLM, report.Source)
	assert.Equal(t, 85, report.Score)

	require.NotEmpty(t, report.Issues)
	last := report.Issues[len(report.Issues)-1]
	assert.Equal(t, entity.SeverityWarning, last.Severity)
	assert.Equal(t, "unquoted variable expansion", last.Message)
	assert.Equal(t, 3, last.Line)
	assert.Contains(t, report.Recommendations, "Quote all parameter expansions")
}

func TestValidate_AcceptsFencedReview(t *testing.T) {
	gw := &fakeGateway{text: "```json\n{\"score\": 90, \"recommendations\": [\"Add a usage line\"]}\n```"}
	gen := newTestGenerator(gw)

	report, err := gen.Validate(context.Background(), ValidateRequest{
		Script:   "#!/usr/bin/env bash\nset -e\necho ok\n",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceLLM, report.Source)
	assert.Equal(t, 90, report.Score)
	assert.Contains(t, report.Recommendations, "Add a usage line")
}

func TestValidate_KeepsRuleFindingsOnMalformedReview(t *testing.T) {
	gw := &fakeGateway{text: "Looks mostly fine, maybe quote your variables."}
	gen := newTestGenerator(gw)

	report, err := gen.Validate(context.Background(), ValidateRequest{
		Script:   "#!/usr/bin/env bash\nset -e\necho ok\n",
		Platform: entity.PlatformBash,
		Policy:   safetyentity.PolicyStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.SourceTemplate, report.Source)
	assert.Equal(t, 100, report.Score)
	assert.Empty(t, report.Recommendations)
}

func TestChat_PassesPreferredProvider(t *testing.T) {
	gw := &fakeGateway{text: "hello there"}
	gen := newTestGenerator(gw)

	completion, err := gen.Chat(context.Background(), ChatRequest{
		Message:           "hi",
		PreferredProvider: "ollama",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello there", completion.Text)
	require.NotNil(t, gw.lastEnvelope)
	assert.Equal(t, "ollama", gw.lastEnvelope.Params.PreferredProvider)
}
