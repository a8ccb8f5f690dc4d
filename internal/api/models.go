package api

import (
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
)

// CreateTaskRequest is the body of POST /api/tasks.
// The owner is always the authenticated caller; a user_id in the body is
// ignored by decoding.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"omitempty,max=1000"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
}

// UpdateTaskRequest is the body of PUT /api/tasks/{id}. Only fields present
// in the body are applied. omitnil (not omitempty) on Title so that an
// absent title is skipped but a present blank one still fails min=1.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitnil,min=1,max=200"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
}

// ToggleCompleteRequest is the body of PATCH /api/tasks/{id}/complete.
// Completed is pointer-typed so that an explicit false is distinguishable
// from an absent field.
type ToggleCompleteRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.UserID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Completed:   task.Completed,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// tasksToResponse converts a slice of tasks, preserving order.
func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}
