package service

import (
	"context"
	"time"

	"github.com/bytedance/gg/gptr"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/repo"
	"github.com/kiosk404/scrivener/pkg/logger"
)

// unavailableAfter is the consecutive-failure count that flips a provider
// from degraded to unavailable.
const unavailableAfter = 2

type gateway struct {
	store repo.ProviderRepository

	defaultProvider string
	order           []string

	temperature  float64
	maxTokens    int
	timeoutMs    int
	maxTimeoutMs int
	maxFallbacks int
}

// NewGateway creates the provider gateway over an already populated store.
func NewGateway(store repo.ProviderRepository, opts *options.LLMOptions) Gateway {
	order := opts.Order
	if len(order) == 0 {
		order = store.Names()
	}
	return &gateway{
		store:           store,
		defaultProvider: opts.DefaultProvider,
		order:           order,
		temperature:     opts.Temperature,
		maxTokens:       opts.MaxTokens,
		timeoutMs:       opts.TimeoutMs,
		maxTimeoutMs:    opts.ProviderMaxTimeoutMs,
		maxFallbacks:    opts.MaxFallbacks,
	}
}

func (g *gateway) applyDefaults(env *entity.PromptEnvelope) {
	if env.Params.Temperature == nil {
		env.Params.Temperature = gptr.Of(g.temperature)
	}
	if env.Params.MaxTokens <= 0 {
		env.Params.MaxTokens = g.maxTokens
	}
	if env.Params.TimeoutMs <= 0 {
		env.Params.TimeoutMs = g.timeoutMs
	}
	if g.maxTimeoutMs > 0 && env.Params.TimeoutMs > g.maxTimeoutMs {
		env.Params.TimeoutMs = g.maxTimeoutMs
	}
}

// candidates builds the attempt order: the preferred provider first, then
// the configured order. Healthy and unprobed providers come before degraded
// ones; unavailable providers are skipped unless that would leave nothing
// to try.
func (g *gateway) candidates(preferred string) []string {
	if preferred == "" {
		preferred = g.defaultProvider
	}

	seen := make(map[string]bool)
	var all []string
	appendName := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if _, ok := g.store.Get(name); !ok {
			return
		}
		seen[name] = true
		all = append(all, name)
	}
	appendName(preferred)
	for _, name := range g.order {
		appendName(name)
	}

	var live, degraded []string
	for _, name := range all {
		switch g.store.Health(name).Status {
		case entity.HealthUnavailable:
		case entity.HealthDegraded:
			degraded = append(degraded, name)
		default:
			live = append(live, name)
		}
	}
	live = append(live, degraded...)
	if len(live) == 0 {
		live = all
	}
	if g.maxFallbacks > 0 && len(live) > g.maxFallbacks {
		live = live[:g.maxFallbacks]
	}
	return live
}

func (g *gateway) Generate(ctx context.Context, env *entity.PromptEnvelope) (*entity.Completion, error) {
	g.applyDefaults(env)

	names := g.candidates(env.Params.PreferredProvider)
	if len(names) == 0 {
		return nil, entity.NewGenerationError(entity.FailureUnavailable, "", "no providers configured", nil)
	}

	var lastErr error
	for _, name := range names {
		binding, ok := g.store.Get(name)
		if !ok {
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, time.Duration(env.Params.TimeoutMs)*time.Millisecond)
		completion, err := binding.Generate(attemptCtx, env)
		cancel()

		if err == nil {
			g.markSuccess(name, completion.LatencyMs)
			return completion, nil
		}

		lastErr = err
		ge, classified := entity.AsGenerationError(err)
		if classified && !ge.Retriable() {
			return nil, err
		}
		g.markFailure(name, err)
		logger.Warn("[LLM] provider %s failed, trying next: %v", name, err)
	}

	return nil, entity.NewGenerationError(entity.FailureUnavailable, "",
		"all providers failed", lastErr)
}

func (g *gateway) markSuccess(name string, latencyMs int64) {
	g.store.UpdateHealth(name, func(h *entity.ProviderHealth) {
		h.Status = entity.HealthHealthy
		h.ConsecutiveFailures = 0
		h.LatencyMs = latencyMs
		h.LastChecked = time.Now().UTC()
		h.LastError = ""
	})
}

func (g *gateway) markFailure(name string, err error) {
	g.store.UpdateHealth(name, func(h *entity.ProviderHealth) {
		h.ConsecutiveFailures++
		h.Status = entity.HealthDegraded
		if h.ConsecutiveFailures >= unavailableAfter {
			h.Status = entity.HealthUnavailable
		}
		h.LastChecked = time.Now().UTC()
		h.LastError = err.Error()
	})
}

func (g *gateway) Statuses() []entity.ProviderStatus {
	return g.store.Statuses()
}

func (g *gateway) Available() bool {
	for _, st := range g.store.Statuses() {
		if st.Health.Status != entity.HealthUnavailable {
			return true
		}
	}
	return false
}
