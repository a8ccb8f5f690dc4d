package store

import (
	"context"

	"github.com/phrazzld/todo-api/internal/domain"
)

// TaskFilter narrows a List call. Nil fields impose no constraint; set
// fields are ANDed together.
type TaskFilter struct {
	Completed *bool
	Status    *domain.Status
	Priority  *domain.Priority
}

// TaskUpdate carries the fields of a partial update. Nil fields are left
// untouched on the stored task; a set field replaces the stored value.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// IsEmpty reports whether no field of the update is set.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil
}

// TaskStore defines the interface for task data persistence.
//
// Every method takes the authenticated user's ID as a mandatory scoping
// parameter and never trusts any other source of ownership: a task is never
// visible or mutable through this interface by anyone but its owner.
type TaskStore interface {
	// List returns all of the user's tasks matching the filter, in insertion
	// order (created_at, then id). The result set is unbounded; there is no
	// pagination.
	List(ctx context.Context, userID string, filter TaskFilter) ([]*domain.Task, error)

	// GetByID retrieves a task by its ID, scoped to the owner.
	// Returns ErrTaskNotFound if the task does not exist or belongs to
	// another user.
	GetByID(ctx context.Context, userID string, taskID int64) (*domain.Task, error)

	// Create persists a new task owned by userID. Any UserID already present
	// on the task is overwritten with the authenticated caller's ID before
	// the insert. Returns the stored task with its generated ID and
	// store-assigned timestamps.
	Create(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error)

	// Update applies the set fields of the partial update to the user's task
	// and returns the updated row. Fields left nil are not modified.
	// Returns ErrTaskNotFound if the task does not exist or is not owned.
	Update(ctx context.Context, userID string, taskID int64, update TaskUpdate) (*domain.Task, error)

	// Delete physically removes the user's task.
	// Returns ErrTaskNotFound if the task does not exist or is not owned.
	Delete(ctx context.Context, userID string, taskID int64) error

	// SetCompletion sets the task's completed flag and derives its status
	// from it: completed when true, pending when false. Returns the updated
	// row, or ErrTaskNotFound if the task does not exist or is not owned.
	SetCompletion(ctx context.Context, userID string, taskID int64, completed bool) (*domain.Task, error)
}
