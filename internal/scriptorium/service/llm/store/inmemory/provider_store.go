package inmemory

import (
	"sync"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/repo"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

var _ repo.ProviderRepository = (*ProviderStore)(nil)

// ProviderStore keeps bindings and health in process memory.
type ProviderStore struct {
	mu       sync.RWMutex
	order    []string
	bindings map[string]spi.Binding
	health   map[string]*entity.ProviderHealth
}

func NewProviderStore() *ProviderStore {
	return &ProviderStore{
		bindings: make(map[string]spi.Binding),
		health:   make(map[string]*entity.ProviderHealth),
	}
}

func (s *ProviderStore) Put(name string, binding spi.Binding) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bindings[name]; !ok {
		s.order = append(s.order, name)
	}
	s.bindings[name] = binding
	s.health[name] = &entity.ProviderHealth{Status: entity.HealthUnknown}
}

func (s *ProviderStore) Get(name string) (spi.Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[name]
	return b, ok
}

func (s *ProviderStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *ProviderStore) Health(name string) entity.ProviderHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.health[name]; ok {
		return *h
	}
	return entity.ProviderHealth{Status: entity.HealthUnknown}
}

func (s *ProviderStore) UpdateHealth(name string, mutate func(h *entity.ProviderHealth)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.health[name]
	if !ok {
		return
	}
	mutate(h)
}

func (s *ProviderStore) Statuses() []entity.ProviderStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.ProviderStatus, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, entity.ProviderStatus{
			ProviderDescriptor: s.bindings[name].Descriptor(),
			Health:             *s.health[name],
		})
	}
	return out
}
