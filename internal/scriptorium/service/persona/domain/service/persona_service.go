package service

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
)

// LoadReport summarizes a directory load.
type LoadReport struct {
	Loaded   int            `json:"loaded"`
	Rejected []RejectedFile `json:"rejected"`
}

// RejectedFile records a persona file that failed validation or decoding.
type RejectedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// PersonaService is the persona registry: load, lookup, selection.
type PersonaService interface {
	// LoadAll reads every *.json persona file under dir. Bad files are
	// reported in the result, never abort the load.
	LoadAll(dir string) (*LoadReport, error)

	List() []*entity.Persona
	ListForChannel(channelID string) []*entity.Persona
	Get(id string) (*entity.Persona, error)

	// Current never returns nil; an empty registry installs a synthetic
	// fallback persona.
	Current() *entity.Persona
	Switch(id string) (*entity.Persona, error)

	// AddCustom validates and installs a runtime-created persona.
	AddCustom(p *entity.Persona) (*entity.Persona, error)

	// Reload re-reads the load directory, preserving the current selection
	// when the persona still exists.
	Reload() (*LoadReport, error)
}
