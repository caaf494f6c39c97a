package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/pkg/options"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/store/inmemory"
)

// fakeBinding is a scripted provider: each call pops the next reply.
type fakeBinding struct {
	name     string
	calls    int
	replies  []fakeReply
	probeErr error
}

type fakeReply struct {
	text string
	err  error
}

func (f *fakeBinding) Name() string { return f.name }

func (f *fakeBinding) Descriptor() entity.ProviderDescriptor {
	return entity.ProviderDescriptor{Name: f.name, Kind: "fake", Model: "fake-model"}
}

func (f *fakeBinding) Generate(_ context.Context, _ *entity.PromptEnvelope) (*entity.Completion, error) {
	idx := f.calls
	f.calls++
	if idx >= len(f.replies) {
		idx = len(f.replies) - 1
	}
	r := f.replies[idx]
	if r.err != nil {
		return nil, r.err
	}
	return &entity.Completion{Text: r.text, ProviderName: f.name, Model: "fake-model"}, nil
}

func (f *fakeBinding) Probe(_ context.Context) error { return f.probeErr }

func alwaysOK(name, text string) *fakeBinding {
	return &fakeBinding{name: name, replies: []fakeReply{{text: text}}}
}

func alwaysFail(name string, kind entity.FailureKind) *fakeBinding {
	return &fakeBinding{name: name, replies: []fakeReply{
		{err: entity.NewGenerationError(kind, name, "scripted failure", nil)},
	}}
}

func testOpts(order ...string) *options.LLMOptions {
	opts := options.NewLLMOptions()
	opts.Order = order
	if len(order) > 0 {
		opts.DefaultProvider = order[0]
	}
	opts.TimeoutMs = 1000
	return opts
}

func TestGateway_FirstProviderWins(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "from alpha"))
	store.Put("beta", alwaysOK("beta", "from beta"))
	g := NewGateway(store, testOpts("alpha", "beta"))

	completion, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, "alpha", completion.ProviderName)
	assert.Equal(t, entity.HealthHealthy, store.Health("alpha").Status)
}

func TestGateway_FallsBackInOrder(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysFail("alpha", entity.FailureUnavailable))
	store.Put("beta", alwaysOK("beta", "from beta"))
	g := NewGateway(store, testOpts("alpha", "beta"))

	completion, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, "beta", completion.ProviderName)
	assert.Equal(t, entity.HealthDegraded, store.Health("alpha").Status)
}

func TestGateway_PreferredProviderTriedFirst(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "from alpha"))
	store.Put("beta", alwaysOK("beta", "from beta"))
	g := NewGateway(store, testOpts("alpha", "beta"))

	env := &entity.PromptEnvelope{}
	env.Params.PreferredProvider = "beta"
	completion, err := g.Generate(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, "beta", completion.ProviderName)
}

func TestGateway_BadRequestDoesNotCascade(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysFail("alpha", entity.FailureBadRequest))
	beta := alwaysOK("beta", "from beta")
	store.Put("beta", beta)
	g := NewGateway(store, testOpts("alpha", "beta"))

	_, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.Error(t, err)
	ge, ok := entity.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, entity.FailureBadRequest, ge.Kind)
	assert.Zero(t, beta.calls)
}

func TestGateway_AllProvidersFail(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysFail("alpha", entity.FailureUnavailable))
	store.Put("beta", alwaysFail("beta", entity.FailureTimeout))
	g := NewGateway(store, testOpts("alpha", "beta"))

	_, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.Error(t, err)
	ge, ok := entity.AsGenerationError(err)
	require.True(t, ok)
	assert.Equal(t, entity.FailureUnavailable, ge.Kind)
	assert.Contains(t, ge.Message, "all providers failed")
}

func TestGateway_FailureCountFlipsUnavailable(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysFail("alpha", entity.FailureUnavailable))
	g := NewGateway(store, testOpts("alpha"))

	_, _ = g.Generate(context.Background(), &entity.PromptEnvelope{})
	assert.Equal(t, entity.HealthDegraded, store.Health("alpha").Status)

	_, _ = g.Generate(context.Background(), &entity.PromptEnvelope{})
	assert.Equal(t, entity.HealthUnavailable, store.Health("alpha").Status)
}

func TestGateway_HealthyProviderTriedBeforeDegraded(t *testing.T) {
	store := inmemory.NewProviderStore()
	alpha := alwaysOK("alpha", "from alpha")
	store.Put("alpha", alpha)
	store.Put("beta", alwaysOK("beta", "from beta"))
	g := NewGateway(store, testOpts("alpha", "beta"))

	store.UpdateHealth("alpha", func(h *entity.ProviderHealth) {
		h.Status = entity.HealthDegraded
		h.ConsecutiveFailures = 1
	})

	completion, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, "beta", completion.ProviderName)
	assert.Zero(t, alpha.calls)
}

func TestGateway_SkipsUnavailableProvider(t *testing.T) {
	store := inmemory.NewProviderStore()
	alpha := alwaysFail("alpha", entity.FailureUnavailable)
	store.Put("alpha", alpha)
	store.Put("beta", alwaysOK("beta", "from beta"))
	g := NewGateway(store, testOpts("alpha", "beta"))

	store.UpdateHealth("alpha", func(h *entity.ProviderHealth) {
		h.Status = entity.HealthUnavailable
		h.ConsecutiveFailures = 3
	})

	completion, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, "beta", completion.ProviderName)
	assert.Zero(t, alpha.calls)
}

func TestGateway_TriesUnavailableWhenNothingElseLeft(t *testing.T) {
	store := inmemory.NewProviderStore()
	alpha := &fakeBinding{name: "alpha", replies: []fakeReply{{text: "recovered"}}}
	store.Put("alpha", alpha)
	g := NewGateway(store, testOpts("alpha"))

	store.UpdateHealth("alpha", func(h *entity.ProviderHealth) {
		h.Status = entity.HealthUnavailable
	})

	completion, err := g.Generate(context.Background(), &entity.PromptEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", completion.Text)
	assert.Equal(t, entity.HealthHealthy, store.Health("alpha").Status)
}

func TestGateway_AppliesDefaultParams(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "ok"))
	opts := testOpts("alpha")
	opts.Temperature = 0.4
	opts.MaxTokens = 512
	g := NewGateway(store, opts)

	env := &entity.PromptEnvelope{}
	_, err := g.Generate(context.Background(), env)
	require.NoError(t, err)
	require.NotNil(t, env.Params.Temperature)
	assert.Equal(t, 0.4, *env.Params.Temperature)
	assert.Equal(t, 512, env.Params.MaxTokens)
	assert.Equal(t, 1000, env.Params.TimeoutMs)
}

func TestGateway_ClampsRequestTimeout(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "ok"))
	opts := testOpts("alpha")
	opts.ProviderMaxTimeoutMs = 2000
	g := NewGateway(store, opts)

	env := &entity.PromptEnvelope{}
	env.Params.TimeoutMs = 60000
	_, err := g.Generate(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 2000, env.Params.TimeoutMs)
}

func TestGateway_Available(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "ok"))
	g := NewGateway(store, testOpts("alpha"))

	assert.True(t, g.Available())

	store.UpdateHealth("alpha", func(h *entity.ProviderHealth) {
		h.Status = entity.HealthUnavailable
	})
	assert.False(t, g.Available())
}

func TestProber_ProbeAllUpdatesHealth(t *testing.T) {
	store := inmemory.NewProviderStore()
	store.Put("alpha", alwaysOK("alpha", "ok"))
	bad := alwaysFail("beta", entity.FailureUnavailable)
	bad.probeErr = entity.NewGenerationError(entity.FailureUnavailable, "beta", "connection refused", nil)
	store.Put("beta", bad)

	p := NewProber(store, 0, 500*time.Millisecond)
	p.ProbeAll(context.Background())

	assert.Equal(t, entity.HealthHealthy, store.Health("alpha").Status)
	assert.Equal(t, entity.HealthDegraded, store.Health("beta").Status)

	p.ProbeAll(context.Background())
	assert.Equal(t, entity.HealthUnavailable, store.Health("beta").Status)
}
