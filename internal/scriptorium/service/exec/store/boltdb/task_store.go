package boltdb

import (
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/repo"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

var _ repo.TaskRepository = (*TaskStore)(nil)

// TaskStore persists finished tasks in a bolt bucket keyed by task id.
// History volumes are small, so list and prune scan the bucket.
type TaskStore struct {
	db *DB
}

func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Save(task *entity.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", task.ID, err)
	}
	return s.db.Bolt().Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).Put([]byte(task.ID), data)
	})
}

func (s *TaskStore) Get(id string) (*entity.Task, error) {
	var task *entity.Task
	err := s.db.Bolt().View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTasks).Get([]byte(id))
		if data == nil {
			return nil
		}
		task = &entity.Task{}
		return json.Unmarshal(data, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskStore) List(limit int) ([]*entity.Task, error) {
	var out []*entity.Task
	err := s.db.Bolt().View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTasks).ForEach(func(_, v []byte) error {
			t := &entity.Task{}
			if err := json.Unmarshal(v, t); err != nil {
				return err
			}
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TaskStore) PruneBefore(cutoff time.Time) (int, error) {
	removed := 0
	err := s.db.Bolt().Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTasks)
		cursor := bucket.Cursor()
		var stale [][]byte
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			t := &entity.Task{}
			if err := json.Unmarshal(v, t); err != nil {
				continue
			}
			if t.FinishedAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *TaskStore) Close() error {
	return s.db.Close()
}
