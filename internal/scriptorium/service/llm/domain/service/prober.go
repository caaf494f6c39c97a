package service

import (
	"context"
	"sync"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/repo"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/utils/safego"
)

const probeConcurrency = 3

// Prober periodically checks provider availability so the gateway can skip
// dead endpoints instead of discovering them per request.
type Prober struct {
	store    repo.ProviderRepository
	interval time.Duration
	timeout  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewProber creates a Prober. An interval of zero disables the loop; ProbeAll
// can still be called directly.
func NewProber(store repo.ProviderRepository, interval, timeout time.Duration) *Prober {
	return &Prober{
		store:    store,
		interval: interval,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
}

// Start launches the probe loop. The first sweep runs immediately.
func (p *Prober) Start(ctx context.Context) {
	if p.interval <= 0 {
		close(p.done)
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)

	safego.Go(func() {
		defer close(p.done)

		p.ProbeAll(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.ProbeAll(ctx)
			}
		}
	})
}

// Stop cancels the loop and waits for the in-flight sweep.
func (p *Prober) Stop() {
	p.once.Do(func() {
		if p.cancel != nil {
			p.cancel()
		}
		<-p.done
	})
}

// ProbeAll sweeps every provider with bounded concurrency.
func (p *Prober) ProbeAll(ctx context.Context) {
	names := p.store.Names()
	if len(names) == 0 {
		return
	}

	sem := make(chan struct{}, probeConcurrency)
	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		sem <- struct{}{}
		go func(name string) {
			defer wg.Done()
			defer func() { <-sem }()
			p.probeOne(ctx, name)
		}(name)
	}
	wg.Wait()
}

func (p *Prober) probeOne(ctx context.Context, name string) {
	binding, ok := p.store.Get(name)
	if !ok {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	err := binding.Probe(probeCtx)
	latency := time.Since(start).Milliseconds()

	prev := p.store.Health(name).Status
	p.store.UpdateHealth(name, func(h *entity.ProviderHealth) {
		h.LastChecked = time.Now().UTC()
		if err == nil {
			h.Status = entity.HealthHealthy
			h.ConsecutiveFailures = 0
			h.LatencyMs = latency
			h.LastError = ""
			return
		}
		h.ConsecutiveFailures++
		h.Status = entity.HealthDegraded
		if h.ConsecutiveFailures >= unavailableAfter {
			h.Status = entity.HealthUnavailable
		}
		h.LastError = err.Error()
	})

	now := p.store.Health(name).Status
	if now != prev {
		logger.Info("[LLM] provider %s health %s -> %s", name, prev, now)
	}
}
