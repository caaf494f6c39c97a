package ollama

import (
	"context"
	"net/http"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/helper"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

const Kind = "ollama"

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

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

func (b *Binding) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	req := chatRequest{
		Model:  b.Model,
		Stream: false,
		Options: chatOptions{
			Temperature: env.Params.Temperature,
			NumPredict:  env.Params.MaxTokens,
			Stop:        env.Params.Stop,
		},
	}
	if env.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: env.SystemPrompt})
	}
	for _, msg := range env.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	start := time.Now()
	var resp chatResponse
	if err := b.PostJSON(ctx, b.URL("/api/chat"), nil, req, &resp); err != nil {
		return nil, err
	}

	return &entity.Completion{
		Text:         resp.Message.Content,
		ProviderName: b.BindingName,
		Model:        b.Model,
		Usage: entity.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// Probe lists local models, which is cheap and does not load one.
func (b *Binding) Probe(ctx context.Context) error {
	return b.GetOK(ctx, b.URL("/api/tags"), nil)
}
