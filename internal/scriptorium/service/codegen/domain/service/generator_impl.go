package service

import (
	"context"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/prompt"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/template"
	llmentity "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	llmservice "github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/service"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

type generator struct {
	gateway   llmservice.Gateway
	validator safetyservice.Validator
	assembler *prompt.Assembler
}

// NewGenerator wires the facade over the gateway and the safety validator.
func NewGenerator(gateway llmservice.Gateway, validator safetyservice.Validator) Generator {
	return &generator{
		gateway:   gateway,
		validator: validator,
		assembler: prompt.NewAssembler(),
	}
}

func (g *generator) Chat(ctx context.Context, req ChatRequest) (*llmentity.Completion, error) {
	pc := &prompt.PromptContext{
		Kind:    prompt.KindChat,
		Persona: req.Persona,
		Channel: req.Channel,
		Request: req.Message,
		History: req.History,
		Now:     time.Now(),
	}
	env, err := g.assembler.BuildEnvelope(ctx, pc)
	if err != nil {
		return nil, err
	}
	env.Params.PreferredProvider = req.PreferredProvider
	return g.gateway.Generate(ctx, env)
}

func (g *generator) Generate(ctx context.Context, req GenerateRequest) (*entity.Script, error) {
	pc := &prompt.PromptContext{
		Kind:     prompt.KindGenerate,
		Persona:  req.Persona,
		Channel:  req.Channel,
		Platform: req.Platform,
		Request:  req.Request,
		History:  req.History,
		Now:      time.Now(),
	}

	script := g.generateViaModel(ctx, pc, req)
	if script == nil {
		script = template.Generate(req.Request, req.Platform)
		logger.Info("[Codegen] falling back to template %q for request", script.Filename)
	}

	script.Safety = g.validator.Validate(script.Content, req.Platform, req.Policy)
	return script, nil
}

// generateViaModel returns nil when the model path cannot produce a usable
// script, which hands the request to the template catalog.
func (g *generator) generateViaModel(ctx context.Context, pc *prompt.PromptContext, req GenerateRequest) *entity.Script {
	env, err := g.assembler.BuildEnvelope(ctx, pc)
	if err != nil {
		logger.Warn("[Codegen] prompt assembly failed: %v", err)
		return nil
	}
	env.Params.PreferredProvider = req.PreferredProvider

	completion, err := g.gateway.Generate(ctx, env)
	if err != nil {
		logger.Warn("[Codegen] generation failed: %v", err)
		return nil
	}

	code, doc, ok := extractFenced(completion.Text, req.Platform)
	if !ok || strings.TrimSpace(code) == "" {
		logger.Warn("[Codegen] reply from %s had no code fence", completion.ProviderName)
		return nil
	}

	return &entity.Script{
		Platform:      req.Platform,
		Filename:      filenameFor(req.Request, req.Platform),
		Content:       postprocess(code, req.Platform, req.Request, pc.Now),
		Documentation: doc,
		Source:        entity.SourceLLM,
	}
}

func (g *generator) Improve(ctx context.Context, req ImproveRequest) (*entity.Script, error) {
	pc := &prompt.PromptContext{
		Kind:        prompt.KindImprove,
		Persona:     req.Persona,
		Platform:    req.Platform,
		PriorScript: req.Script,
		Feedback:    req.Feedback,
		Now:         time.Now(),
	}
	env, err := g.assembler.BuildEnvelope(ctx, pc)
	if err != nil {
		return nil, err
	}
	env.Params.PreferredProvider = req.PreferredProvider

	completion, err := g.gateway.Generate(ctx, env)
	if err != nil {
		return nil, err
	}

	code, doc, ok := extractFenced(completion.Text, req.Platform)
	if !ok || strings.TrimSpace(code) == "" {
		return nil, llmentity.NewGenerationError(llmentity.FailureProtocol,
			completion.ProviderName, "improved reply had no code fence", nil)
	}

	script := &entity.Script{
		Platform:      req.Platform,
		Filename:      filenameFor(req.Feedback, req.Platform),
		Content:       postprocess(code, req.Platform, req.Feedback, pc.Now),
		Documentation: doc,
		Source:        entity.SourceLLM,
	}
	script.Safety = g.validator.Validate(script.Content, req.Platform, req.Policy)
	return script, nil
}

func (g *generator) Validate(ctx context.Context, req ValidateRequest) (*entity.ValidationReport, error) {
	report := g.validator.Validate(req.Script, req.Platform, req.Policy)
	report.Source = entity.SourceTemplate

	pc := &prompt.PromptContext{
		Kind:        prompt.KindValidate,
		Platform:    req.Platform,
		PriorScript: req.Script,
		Now:         time.Now(),
	}
	env, err := g.assembler.BuildEnvelope(ctx, pc)
	if err != nil {
		return report, nil
	}
	env.Params.PreferredProvider = req.PreferredProvider

	completion, err := g.gateway.Generate(ctx, env)
	if err != nil {
		// Rule findings stand on their own when no provider is reachable.
		logger.Warn("[Codegen] model review unavailable: %v", err)
		return report, nil
	}

	review, ok := parseReview(completion.Text)
	if !ok {
		logger.Warn("[Codegen] model review from %s was not valid JSON, keeping rule findings", completion.ProviderName)
		return report, nil
	}

	report.Issues = append(report.Issues, review.Issues...)
	report.Recommendations = append(report.Recommendations, review.Recommendations...)
	if review.Score != nil {
		score := *review.Score
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}
		if score < report.Score {
			report.Score = score
		}
	}
	report.Source = entity.SourceLLM
	return report, nil
}

// modelReview is the structured verdict the validate prompt asks for.
type modelReview struct {
	Score           *int           `json:"score"`
	Issues          []entity.Issue `json:"issues"`
	Recommendations []string       `json:"recommendations"`
}

// parseReview decodes a model review, tolerating a surrounding code fence.
func parseReview(text string) (*modelReview, bool) {
	raw := strings.TrimSpace(text)
	if strings.HasPrefix(raw, "```") {
		if m := fencePattern.FindStringSubmatch(raw); m != nil {
			raw = strings.TrimSpace(m[2])
		}
	}
	var review modelReview
	if err := json.Unmarshal([]byte(raw), &review); err != nil {
		return nil, false
	}
	return &review, true
}
