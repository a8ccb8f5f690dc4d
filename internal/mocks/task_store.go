package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// MemoryTaskStore is an in-memory implementation of store.TaskStore with
// the same observable semantics as the PostgreSQL store: ownership-scoped
// access, insertion ordering, generated ids and store-managed timestamps.
// Safe for concurrent use.
type MemoryTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  []*domain.Task // insertion order
}

// NewMemoryTaskStore creates an empty in-memory task store.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{nextID: 1}
}

// Ensure MemoryTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*MemoryTaskStore)(nil)

// List implements store.TaskStore.List
func (s *MemoryTaskStore) List(
	_ context.Context,
	userID string,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Task, 0)
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		copied := *task
		out = append(out, &copied)
	}
	return out, nil
}

// GetByID implements store.TaskStore.GetByID
func (s *MemoryTaskStore) GetByID(
	_ context.Context,
	userID string,
	taskID int64,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.find(userID, taskID)
	if task == nil {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// Create implements store.TaskStore.Create
func (s *MemoryTaskStore) Create(
	_ context.Context,
	userID string,
	task *domain.Task,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *task
	stored.UserID = userID
	stored.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.tasks = append(s.tasks, &stored)

	copied := stored
	return &copied, nil
}

// Update implements store.TaskStore.Update
func (s *MemoryTaskStore) Update(
	_ context.Context,
	userID string,
	taskID int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.find(userID, taskID)
	if task == nil {
		return nil, store.ErrTaskNotFound
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	task.UpdatedAt = time.Now().UTC()

	copied := *task
	return &copied, nil
}

// Delete implements store.TaskStore.Delete
func (s *MemoryTaskStore) Delete(_ context.Context, userID string, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, task := range s.tasks {
		if task.ID == taskID && task.UserID == userID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return store.ErrTaskNotFound
}

// SetCompletion implements store.TaskStore.SetCompletion
func (s *MemoryTaskStore) SetCompletion(
	_ context.Context,
	userID string,
	taskID int64,
	completed bool,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := s.find(userID, taskID)
	if task == nil {
		return nil, store.ErrTaskNotFound
	}

	task.SetCompleted(completed)
	task.UpdatedAt = time.Now().UTC()

	copied := *task
	return &copied, nil
}

// find returns the stored task for the owner, or nil. Caller holds the lock.
func (s *MemoryTaskStore) find(userID string, taskID int64) *domain.Task {
	for _, task := range s.tasks {
		if task.ID == taskID && task.UserID == userID {
			return task
		}
	}
	return nil
}
