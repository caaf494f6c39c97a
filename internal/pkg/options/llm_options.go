package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

// LLMOptions configures the provider gateway.
type LLMOptions struct {
	// DefaultProvider is the preferred provider name when a request does not
	// name one explicitly.
	DefaultProvider string `json:"default-provider" mapstructure:"default-provider"`

	// Order is the configured fallback order of provider names.
	Order []string `json:"order" mapstructure:"order"`

	// Providers maps provider name to its connection settings.
	Providers map[string]*ProviderConfig `json:"providers" mapstructure:"providers"`

	Temperature          float64 `json:"temperature"            mapstructure:"temperature"`
	MaxTokens            int     `json:"max-tokens"             mapstructure:"max-tokens"`
	TimeoutMs            int     `json:"timeout-ms"             mapstructure:"timeout-ms"`
	ProviderMaxTimeoutMs int     `json:"provider-max-timeout-ms" mapstructure:"provider-max-timeout-ms"`
	ProbeIntervalSeconds int     `json:"probe-interval-seconds" mapstructure:"probe-interval-seconds"`
	HealthTimeoutMs      int     `json:"health-timeout-ms"      mapstructure:"health-timeout-ms"`
	MaxFallbacks         int     `json:"max-fallbacks"          mapstructure:"max-fallbacks"`
}

// ProviderConfig holds per-provider connection settings.
type ProviderConfig struct {
	// Kind selects the wire binding: ollama, openai, anthropic, gemini, custom.
	Kind     string `json:"kind"     mapstructure:"kind"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	APIKey   string `json:"api-key"  mapstructure:"api-key"`
	Model    string `json:"model"    mapstructure:"model"`
}

// NewLLMOptions creates LLMOptions with the local-first defaults.
func NewLLMOptions() *LLMOptions {
	return &LLMOptions{
		DefaultProvider: "ollama",
		Order:           []string{"ollama"},
		Providers: map[string]*ProviderConfig{
			"ollama": {
				Kind:     "ollama",
				Endpoint: "http://localhost:11434",
				Model:    "llama3.1:8b",
			},
		},
		Temperature:          0.1,
		MaxTokens:            2048,
		TimeoutMs:            30000,
		ProviderMaxTimeoutMs: 120000,
		ProbeIntervalSeconds: 60,
		HealthTimeoutMs:      5000,
		MaxFallbacks:         3,
	}
}

// Validate checks the options.
func (o *LLMOptions) Validate() []error {
	var errs []error
	for _, name := range o.Order {
		if _, ok := o.Providers[name]; !ok {
			errs = append(errs, fmt.Errorf("llm order names unknown provider %q", name))
		}
	}
	for name, p := range o.Providers {
		if p.Endpoint == "" {
			errs = append(errs, fmt.Errorf("provider %q: endpoint is required", name))
		}
		switch p.Kind {
		case "ollama", "openai", "anthropic", "gemini", "custom":
		default:
			errs = append(errs, fmt.Errorf("provider %q: unknown kind %q", name, p.Kind))
		}
	}
	if o.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm max-tokens must be positive"))
	}
	return errs
}

// AddFlags adds flags for the gateway to the specified FlagSet. Per-provider
// settings come from the config file; only scalar knobs are flags.
func (o *LLMOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.DefaultProvider, "llm.default-provider", o.DefaultProvider, "Preferred LLM provider name.")
	fs.StringSliceVar(&o.Order, "llm.order", o.Order, "Fallback order of provider names.")
	fs.Float64Var(&o.Temperature, "llm.temperature", o.Temperature, "Default sampling temperature.")
	fs.IntVar(&o.MaxTokens, "llm.max-tokens", o.MaxTokens, "Default completion token budget.")
	fs.IntVar(&o.TimeoutMs, "llm.timeout-ms", o.TimeoutMs, "Default per-request timeout in milliseconds.")
	fs.IntVar(&o.ProbeIntervalSeconds, "llm.probe-interval-seconds", o.ProbeIntervalSeconds, "Health probe interval in seconds (0 disables probing).")
	fs.IntVar(&o.HealthTimeoutMs, "llm.health-timeout-ms", o.HealthTimeoutMs, "Health probe timeout in milliseconds.")
	fs.IntVar(&o.MaxFallbacks, "llm.max-fallbacks", o.MaxFallbacks, "Maximum provider attempts per request.")
}
