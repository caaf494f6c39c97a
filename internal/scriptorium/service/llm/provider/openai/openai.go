package openai

import (
	"context"
	"net/http"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/helper"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

const Kind = "openai"

var _ spi.Binding = (*Binding)(nil)

// Binding speaks the chat-completions wire format. It also serves "custom"
// providers since that format is the de facto compatibility target.
type Binding struct {
	helper.BaseBinding
}

func New(name string, cfg *options.ProviderConfig, client *http.Client) (spi.Binding, error) {
	return NewWithKind(name, cfg, client, Kind)
}

func NewWithKind(name string, cfg *options.ProviderConfig, client *http.Client, kind string) (spi.Binding, error) {
	return &Binding{
		BaseBinding: helper.BaseBinding{
			BindingName: name,
			Endpoint:    cfg.Endpoint,
			APIKey:      helper.ResolveEnvValue(cfg.APIKey),
			Model:       cfg.Model,
			Kind:        kind,
			Client:      client,
		},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stop        []string      `json:"stop,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

func (b *Binding) headers() map[string]string {
	if b.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + b.APIKey}
}

func (b *Binding) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	req := chatRequest{
		Model:       b.Model,
		Temperature: env.Params.Temperature,
		MaxTokens:   env.Params.MaxTokens,
		Stop:        env.Params.Stop,
	}
	if env.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: env.SystemPrompt})
	}
	for _, msg := range env.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	start := time.Now()
	var resp chatResponse
	if err := b.PostJSON(ctx, b.URL("/chat/completions"), b.headers(), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "response has no choices", nil)
	}

	model := resp.Model
	if model == "" {
		model = b.Model
	}
	return &entity.Completion{
		Text:         resp.Choices[0].Message.Content,
		ProviderName: b.BindingName,
		Model:        model,
		Usage: entity.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (b *Binding) Probe(ctx context.Context) error {
	return b.GetOK(ctx, b.URL("/models"), b.headers())
}
