package repo

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/persona/domain/entity"
)

// PersonaRepository stores registered personas.
type PersonaRepository interface {
	Put(p *entity.Persona) error
	Get(id string) (*entity.Persona, error)
	List() []*entity.Persona
	Delete(id string) error
	Clear()
	Len() int
}
