package db

import (
	"context"
	"sync"
	"time"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
)

// MemoryTaskStore is an in-process TaskStore for single-instance
// deployments and tests. It implements the same merge, transition and
// cleanup semantics as the durable store.
type MemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	task.UpdatedAt = task.CreatedAt

	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *MemoryTaskStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ports.ErrTaskNotFound
	}

	// Return a copy so pollers never observe a half-applied update.
	taskCopy := *task
	return &taskCopy, nil
}

func (s *MemoryTaskStore) Update(ctx context.Context, id string, update ports.TaskUpdate) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return nil, ports.ErrTaskNotFound
	}

	merged, _, err := mergeTaskUpdate(task, update)
	if err != nil {
		return nil, err
	}
	merged.UpdatedAt = time.Now()
	s.tasks[id] = merged

	taskCopy := *merged
	return &taskCopy, nil
}

func (s *MemoryTaskStore) AppendError(ctx context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[id]
	if !exists {
		return ports.ErrTaskNotFound
	}
	if task.Status.Terminal() {
		return ports.ErrTaskFinished
	}

	task.Errors = append(task.Errors, message)
	task.FailedRecords++
	task.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryTaskStore) CleanupExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, task := range s.tasks {
		if task.Status == domain.TaskStatusProcessing {
			continue
		}
		if task.CreatedAt.Before(olderThan) {
			delete(s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}
