package anthropic

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/helper"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

const (
	Kind       = "anthropic"
	apiVersion = "2023-06-01"

	// The messages API requires max_tokens. Used when the envelope leaves
	// it unset.
	fallbackMaxTokens = 2048
)

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

type messagesRequest struct {
	Model         string        `json:"model"`
	System        string        `json:"system,omitempty"`
	Messages      []chatMessage `json:"messages"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   *float64      `json:"temperature,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (b *Binding) headers() map[string]string {
	return map[string]string{
		"x-api-key":         b.APIKey,
		"anthropic-version": apiVersion,
	}
}

func (b *Binding) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	maxTokens := env.Params.MaxTokens
	if maxTokens <= 0 {
		maxTokens = fallbackMaxTokens
	}
	req := messagesRequest{
		Model:         b.Model,
		System:        env.SystemPrompt,
		MaxTokens:     maxTokens,
		Temperature:   env.Params.Temperature,
		StopSequences: env.Params.Stop,
	}
	// System turns are carried in the top-level field; the messages array
	// only accepts user and assistant roles.
	for _, msg := range env.Messages {
		role := string(msg.Role)
		if msg.Role == entity.ChatRoleSystem {
			req.System = strings.TrimSpace(req.System + "\n\n" + msg.Content)
			continue
		}
		req.Messages = append(req.Messages, chatMessage{Role: role, Content: msg.Content})
	}

	start := time.Now()
	var resp messagesResponse
	if err := b.PostJSON(ctx, b.URL("/v1/messages"), b.headers(), req, &resp); err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	model := resp.Model
	if model == "" {
		model = b.Model
	}
	return &entity.Completion{
		Text:         sb.String(),
		ProviderName: b.BindingName,
		Model:        model,
		Usage: entity.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
		},
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (b *Binding) Probe(ctx context.Context) error {
	return b.GetOK(ctx, b.URL("/v1/models"), b.headers())
}
