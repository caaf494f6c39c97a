package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/repo"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/pkg/errno"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

// FallbackPersonaID is the id of the synthetic persona installed when the
// registry would otherwise be empty.
const FallbackPersonaID = "fallback"

type personaService struct {
	store repo.PersonaRepository

	mu        sync.RWMutex
	currentID string
	loadDir   string
}

// NewPersonaService creates the registry over the given repository.
func NewPersonaService(store repo.PersonaRepository) PersonaService {
	return &personaService{store: store}
}

func (s *personaService) LoadAll(dir string) (*LoadReport, error) {
	s.mu.Lock()
	s.loadDir = dir
	s.mu.Unlock()

	report := s.loadDirectory(dir)
	s.selectDefault("")
	logger.Info("[Persona] loaded %d personas from %s (%d rejected), current=%s",
		report.Loaded, dir, len(report.Rejected), s.Current().ID)
	return report, nil
}

// loadDirectory registers every valid persona file. Per-file failures are
// collected, not raised.
func (s *personaService) loadDirectory(dir string) *LoadReport {
	report := &LoadReport{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("[Persona] personas directory %q not readable: %v", dir, err)
		return report
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		p, err := readPersonaFile(path)
		if err != nil {
			report.Rejected = append(report.Rejected, RejectedFile{File: e.Name(), Reason: err.Error()})
			logger.Warn("[Persona] rejected %s: %v", e.Name(), err)
			continue
		}
		if err := s.store.Put(p); err != nil {
			report.Rejected = append(report.Rejected, RejectedFile{File: e.Name(), Reason: err.Error()})
			continue
		}
		report.Loaded++
	}
	return report
}

func readPersonaFile(path string) (*entity.Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	var p entity.Persona
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Custom = false
	return &p, nil
}

// selectDefault picks the current persona: keep preferredID when present,
// else vanilla, else default, else the first in lexical order, else install
// the synthetic fallback.
func (s *personaService) selectDefault(preferredID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if preferredID != "" {
		if _, err := s.store.Get(preferredID); err == nil {
			s.currentID = preferredID
			return
		}
	}
	for _, id := range []string{"vanilla", "default"} {
		if _, err := s.store.Get(id); err == nil {
			s.currentID = id
			return
		}
	}
	if all := s.store.List(); len(all) > 0 {
		s.currentID = all[0].ID
		return
	}

	fallback := fallbackPersona()
	_ = s.store.Put(fallback)
	s.currentID = fallback.ID
	logger.Warn("[Persona] registry empty, installed fallback persona")
}

func fallbackPersona() *entity.Persona {
	return &entity.Persona{
		ID:           FallbackPersonaID,
		Name:         "Scriptorium Assistant",
		Description:  "Default assistant persona",
		Greeting:     "Hello! I can chat and generate automation scripts for you.",
		SystemPrompt: "You are a helpful assistant that generates automation scripts and provides conversational assistance.",
		Capabilities: []string{"General conversation", "Automation scripting"},
		Personality: entity.Personality{
			Tone:     "friendly",
			Approach: "helpful",
		},
		Examples: []string{"Create a PowerShell script", "Help with automation"},
	}
}

func (s *personaService) List() []*entity.Persona {
	return s.store.List()
}

func (s *personaService) ListForChannel(channelID string) []*entity.Persona {
	var out []*entity.Persona
	for _, p := range s.store.List() {
		if p.SupportsChannel(channelID) {
			out = append(out, p)
		}
	}
	return out
}

func (s *personaService) Get(id string) (*entity.Persona, error) {
	return s.store.Get(id)
}

func (s *personaService) Current() *entity.Persona {
	s.mu.RLock()
	id := s.currentID
	s.mu.RUnlock()

	if p, err := s.store.Get(id); err == nil {
		return p
	}
	// Selection went stale (registry cleared behind us): re-select.
	s.selectDefault("")
	p, _ := s.store.Get(s.currentIDLocked())
	return p
}

func (s *personaService) currentIDLocked() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentID
}

func (s *personaService) Switch(id string) (*entity.Persona, error) {
	p, err := s.store.Get(id)
	if err != nil {
		return nil, errno.ErrPersonaNotFound
	}
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
	logger.Info("[Persona] switched to %s (%s)", p.Name, p.ID)
	return p, nil
}

func (s *personaService) AddCustom(p *entity.Persona) (*entity.Persona, error) {
	if p.ID == "" {
		p.ID = entity.DeriveID(p.Name)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrPersonaInvalid, err)
	}
	if _, err := s.store.Get(p.ID); err == nil {
		return nil, errno.ErrPersonaExists
	}
	p.Custom = true
	if err := s.store.Put(p); err != nil {
		return nil, err
	}
	logger.Info("[Persona] installed custom persona %s", p.ID)
	return p, nil
}

func (s *personaService) Reload() (*LoadReport, error) {
	s.mu.RLock()
	dir := s.loadDir
	previous := s.currentID
	s.mu.RUnlock()

	// Preserve runtime-created personas across the reload.
	var customs []*entity.Persona
	for _, p := range s.store.List() {
		if p.Custom {
			customs = append(customs, p)
		}
	}

	s.store.Clear()
	report := s.loadDirectory(dir)
	for _, p := range customs {
		_ = s.store.Put(p)
	}
	s.selectDefault(previous)

	logger.Info("[Persona] reloaded: %d personas, current=%s", report.Loaded, s.Current().ID)
	return report, nil
}
