package repo

import (
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/llm/provider/spi"
)

// ProviderRepository holds the configured bindings and their health records.
type ProviderRepository interface {
	Put(name string, binding spi.Binding)
	Get(name string) (spi.Binding, bool)

	// Names returns provider names in registration order.
	Names() []string

	Health(name string) entity.ProviderHealth
	UpdateHealth(name string, mutate func(h *entity.ProviderHealth))

	Statuses() []entity.ProviderStatus
}
