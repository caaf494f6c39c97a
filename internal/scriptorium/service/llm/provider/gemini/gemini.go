package gemini

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/helper"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

const Kind = "gemini"

var _ spi.Binding = (*Binding)(nil)

type Binding struct {
	helper.BaseBinding
}

func New(name string, cfg *options.ProviderConfig, client *http.Client) (spi.Binding, error) {
	return &Binding{
		BaseBinding: helper.BaseBinding{
			BindingName: name,
			Endpoint:    cfg.Endpoint,
			APIKey:      helper.ResolveEnvValue(cfg.APIKey),
			Model:       cfg.Model,
			Kind:        Kind,
			Client:      client,
		},
	}, nil
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
	GenerationConfig  genConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (b *Binding) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	req := generateRequest{
		GenerationConfig: genConfig{
			Temperature:     env.Params.Temperature,
			MaxOutputTokens: env.Params.MaxTokens,
			StopSequences:   env.Params.Stop,
		},
	}
	if env.SystemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: env.SystemPrompt}}}
	}
	for _, msg := range env.Messages {
		// Gemini names the assistant role "model" and folds system turns
		// into user ones.
		role := "user"
		if msg.Role == entity.ChatRoleAssistant {
			role = "model"
		}
		req.Contents = append(req.Contents, content{Role: role, Parts: []part{{Text: msg.Content}}})
	}

	endpoint := b.URL("/v1beta/models/" + b.Model + ":generateContent?key=" + url.QueryEscape(b.APIKey))

	start := time.Now()
	var resp generateResponse
	if err := b.PostJSON(ctx, endpoint, nil, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "response has no candidates", nil)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}

	return &entity.Completion{
		Text:         sb.String(),
		ProviderName: b.BindingName,
		Model:        b.Model,
		Usage: entity.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (b *Binding) Probe(ctx context.Context) error {
	return b.GetOK(ctx, b.URL("/v1beta/models?key="+url.QueryEscape(b.APIKey)), nil)
}
