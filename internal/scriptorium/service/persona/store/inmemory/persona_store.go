package inmemory

import (
	"sort"
	"sync"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/pkg/errno"
)

// PersonaStore is a mutex-guarded in-memory persona repository.
type PersonaStore struct {
	mu       sync.RWMutex
	personas map[string]*entity.Persona
}

// NewPersonaStore creates an empty PersonaStore.
func NewPersonaStore() *PersonaStore {
	return &PersonaStore{personas: make(map[string]*entity.Persona)}
}

func (s *PersonaStore) Put(p *entity.Persona) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas[p.ID] = p
	return nil
}

func (s *PersonaStore) Get(id string) (*entity.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.personas[id]
	if !ok {
		return nil, errno.ErrPersonaNotFound
	}
	return p, nil
}

// List returns all personas in lexical id order.
func (s *PersonaStore) List() []*entity.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Persona, 0, len(s.personas))
	for _, p := range s.personas {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *PersonaStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.personas[id]; !ok {
		return errno.ErrPersonaNotFound
	}
	delete(s.personas, id)
	return nil
}

func (s *PersonaStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.personas = make(map[string]*entity.Persona)
}

func (s *PersonaStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.personas)
}
