package inmemory

import (
	"sort"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/repo"
)

var _ repo.TaskRepository = (*TaskStore)(nil)

// TaskStore keeps finished tasks in memory with a hard cap. When the cap is
// exceeded the oldest records fall off.
type TaskStore struct {
	mu    sync.RWMutex
	max   int
	tasks map[string]*entity.Task
}

func NewTaskStore(max int) *TaskStore {
	return &TaskStore{max: max, tasks: make(map[string]*entity.Task)}
}

func (s *TaskStore) Save(task *entity.Task) error {
	snapshot := &entity.Task{}
	if err := copier.CopyWithOption(snapshot, task, copier.Option{DeepCopy: true}); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks[snapshot.ID] = snapshot
	if s.max > 0 && len(s.tasks) > s.max {
		s.evictOldestLocked(len(s.tasks) - s.max)
	}
	return nil
}

func (s *TaskStore) evictOldestLocked(n int) {
	all := s.sortedLocked()
	for i := len(all) - n; i < len(all); i++ {
		delete(s.tasks, all[i].ID)
	}
}

// sortedLocked returns tasks newest first.
func (s *TaskStore) sortedLocked() []*entity.Task {
	out := make([]*entity.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	return out
}

func (s *TaskStore) Get(id string) (*entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	snapshot := &entity.Task{}
	if err := copier.CopyWithOption(snapshot, t, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *TaskStore) List(limit int) ([]*entity.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedLocked()
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*entity.Task, len(all))
	for i, t := range all {
		snapshot := &entity.Task{}
		if err := copier.CopyWithOption(snapshot, t, copier.Option{DeepCopy: true}); err != nil {
			return nil, err
		}
		out[i] = snapshot
	}
	return out, nil
}

func (s *TaskStore) PruneBefore(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, t := range s.tasks {
		if t.FinishedAt.Before(cutoff) {
			delete(s.tasks, id)
			removed++
		}
	}
	return removed, nil
}

func (s *TaskStore) Close() error { return nil }
