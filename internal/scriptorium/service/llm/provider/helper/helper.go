package helper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

const maxErrorBodyLen = 512

// BaseBinding carries the fields every wire binding shares.
type BaseBinding struct {
	BindingName string
	Endpoint    string
	APIKey      string
	Model       string
	Kind        string

	Client *http.Client
}

func (b *BaseBinding) Name() string { return b.BindingName }

func (b *BaseBinding) Descriptor() entity.ProviderDescriptor {
	return entity.ProviderDescriptor{
		Name:     b.BindingName,
		Kind:     b.Kind,
		Endpoint: b.Endpoint,
		Model:    b.Model,
	}
}

// URL joins the endpoint with a path.
func (b *BaseBinding) URL(path string) string {
	return strings.TrimRight(b.Endpoint, "/") + path
}

// PostJSON sends payload and decodes the 2xx response body into out.
// Any failure comes back as a classified *entity.GenerationError.
func (b *BaseBinding) PostJSON(ctx context.Context, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		kind := entity.ClassifyTransportError(err)
		return entity.NewGenerationError(kind, b.BindingName, err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := entity.ClassifyHTTPStatus(resp.StatusCode)
		snippet := string(data)
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}
		msg := fmt.Sprintf("status %d: %s", resp.StatusCode, snippet)
		return entity.NewGenerationError(kind, b.BindingName, msg, nil)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "decode response", err)
	}
	return nil
}

// GetOK issues a GET and reports non-2xx or transport failures as classified
// errors. Used for availability probes.
func (b *BaseBinding) GetOK(ctx context.Context, url string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return entity.NewGenerationError(entity.FailureProtocol, b.BindingName, "build request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return entity.NewGenerationError(entity.ClassifyTransportError(err), b.BindingName, err.Error(), err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return entity.NewGenerationError(entity.ClassifyHTTPStatus(resp.StatusCode), b.BindingName,
			fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	return nil
}

// NewHTTPClient builds the shared client with an upper-bound timeout. The
// per-request deadline still comes from the context.
func NewHTTPClient(maxTimeout time.Duration) *http.Client {
	return &http.Client{Timeout: maxTimeout}
}

// ResolveEnvValue resolves "${ENV_VAR}" references in a string.
func ResolveEnvValue(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return s
}

// FlattenMessages renders the envelope as a single text prompt for wire
// formats without native chat turns.
func FlattenMessages(env *entity.PromptEnvelope) string {
	var sb strings.Builder
	if env.SystemPrompt != "" {
		sb.WriteString(env.SystemPrompt)
		sb.WriteString("\n\n")
	}
	for _, msg := range env.Messages {
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
