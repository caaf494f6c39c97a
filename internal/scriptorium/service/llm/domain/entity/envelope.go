package entity

// ChatRole identifies the author of a chat turn sent to a provider.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn of provider-bound conversation context.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// GenerationParams are the per-request generation knobs.
type GenerationParams struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	TimeoutMs   int      `json:"timeoutMs,omitempty"`
	Stop        []string `json:"stop,omitempty"`

	// PreferredProvider names the provider to try first. Empty means the
	// gateway default.
	PreferredProvider string `json:"preferredProvider,omitempty"`
}

// PromptEnvelope is a fully assembled, provider-agnostic request.
type PromptEnvelope struct {
	SystemPrompt string           `json:"systemPrompt"`
	Messages     []ChatMessage    `json:"messages"`
	Params       GenerationParams `json:"params"`
}

// Usage carries provider-reported token accounting when available.
type Usage struct {
	PromptTokens     int `json:"promptTokens,omitempty"`
	CompletionTokens int `json:"completionTokens,omitempty"`
}

// Completion is the provider response mapped back into gateway terms.
type Completion struct {
	Text         string `json:"text"`
	ProviderName string `json:"providerName"`
	Model        string `json:"model,omitempty"`
	Usage        Usage  `json:"usage,omitempty"`
	LatencyMs    int64  `json:"latencyMs,omitempty"`
}
