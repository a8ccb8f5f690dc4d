package domain

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// Task field limits.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// Task-specific validation errors
var (
	// ErrTaskUserIDEmpty is returned when a task's user ID is empty.
	ErrTaskUserIDEmpty = errors.New("task user ID cannot be empty")

	// ErrTaskTitleEmpty is returned when a task's title is empty.
	ErrTaskTitleEmpty = errors.New("task title cannot be empty")

	// ErrTaskTitleTooLong is returned when a task's title exceeds the length limit.
	ErrTaskTitleTooLong = fmt.Errorf("task title cannot exceed %d characters", MaxTitleLength)

	// ErrTaskDescriptionTooLong is returned when a task's description exceeds the length limit.
	ErrTaskDescriptionTooLong = fmt.Errorf(
		"task description cannot exceed %d characters",
		MaxDescriptionLength,
	)

	// ErrInvalidPriority is returned when a priority value is not one of low, medium, high.
	ErrInvalidPriority = errors.New("invalid task priority")

	// ErrInvalidStatus is returned when a status value is not one of pending, in-progress, completed.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrStatusCompletedMismatch is returned when the completed flag and the
	// status field disagree (completed must hold exactly when status is completed).
	ErrStatusCompletedMismatch = errors.New("task completed flag does not match status")
)

// Priority represents the urgency level of a task.
type Priority string

// Valid priority values.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priority values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Status represents the lifecycle state of a task.
type Status string

// Valid status values.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// IsValid reports whether s is one of the known status values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task is the sole persisted entity: a single to-do item owned by one user.
// The ID is assigned by the database on insert, and the timestamps are
// maintained by the store on every mutation.
type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a new Task owned by userID with the given title and
// description, defaulting priority to medium and status to pending.
// Returns an error if validation fails.
func NewTask(userID, title, description string) (*Task, error) {
	task := &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    PriorityMedium,
		Status:      StatusPending,
		Completed:   false,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.UserID == "" {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	// Limits count characters, not bytes, matching the column definitions.
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTaskTitleTooLong
	}

	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrTaskDescriptionTooLong
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if t.Completed != (t.Status == StatusCompleted) {
		return ErrStatusCompletedMismatch
	}

	return nil
}

// SetStatus sets the task's status and keeps the completed flag in sync
// (completed holds exactly when status is completed).
// Returns ErrInvalidStatus for unknown values.
func (t *Task) SetStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	t.Status = status
	t.Completed = status == StatusCompleted
	return nil
}

// SetCompleted sets the completed flag and derives the status from it:
// true yields completed, false yields pending. A task that was in-progress
// and is toggled off therefore resets to pending rather than restoring its
// prior state; the toggle path never produces in-progress.
func (t *Task) SetCompleted(completed bool) {
	t.Completed = completed
	if completed {
		t.Status = StatusCompleted
	} else {
		t.Status = StatusPending
	}
}
