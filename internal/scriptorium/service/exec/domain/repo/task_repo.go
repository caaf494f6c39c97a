package repo

import (
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
)

// TaskRepository persists finished tasks for history queries.
type TaskRepository interface {
	// Save upserts one terminal task.
	Save(task *entity.Task) error

	// Get returns a task by id, or nil when unknown.
	Get(id string) (*entity.Task, error)

	// List returns up to limit tasks, most recently finished first.
	// limit <= 0 means all.
	List(limit int) ([]*entity.Task, error)

	// PruneBefore deletes tasks that finished before the cutoff and returns
	// how many were removed.
	PruneBefore(cutoff time.Time) (int, error)

	Close() error
}
