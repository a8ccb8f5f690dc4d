package api

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskStore store.TaskStore
	logger    *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskStore store.TaskStore, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskStore: taskStore,
		logger:    logger.With(slog.String("component", "task_handler")),
	}
}

// requireUserID extracts the authenticated user's ID from the request
// context. Writes a 401 and returns false if it is absent, which only
// happens if the route was registered without the auth middleware.
func (h *TaskHandler) requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found")
		return "", false
	}
	return userID, true
}

// parseTaskID extracts and parses the {id} path parameter.
// Writes a 400 and returns false for malformed ids.
func (h *TaskHandler) parseTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	taskID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		log.Warn("invalid task ID format", slog.String("task_id", raw))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID format")
		return 0, false
	}
	return taskID, true
}

// ListTasks handles GET /api/tasks requests.
// Supports ?status=all|pending|completed (absent means all) and
// ?sort=created|title. The default order is insertion order; sort=title
// applies a stable alphabetical sort in-process. Unknown sort values are
// ignored.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var filter store.TaskFilter
	switch status := r.URL.Query().Get("status"); status {
	case "", "all":
		// No constraint.
	case "pending":
		completed := false
		filter.Completed = &completed
	case "completed":
		completed := true
		filter.Completed = &completed
	default:
		log.Debug("rejected list with unknown status filter", slog.String("status", status))
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			"Status must be 'all', 'pending', or 'completed'")
		return
	}

	tasks, err := h.taskStore.List(r.Context(), userID, filter)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), "Failed to list tasks", err)
		return
	}

	if r.URL.Query().Get("sort") == "title" {
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Title < tasks[j].Title
		})
	}

	log.Debug("tasks listed",
		slog.String("user_id", userID),
		slog.Int("count", len(tasks)))
	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// CreateTask handles POST /api/tasks requests.
// The owner is always the verified caller; any user_id in the body has no
// field to decode into and is discarded.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			"Validation error", err)
		return
	}

	task, err := domain.NewTask(userID, req.Title, req.Description)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			GetSafeErrorMessage(err), err)
		return
	}

	if req.Priority != "" {
		task.Priority = domain.Priority(req.Priority)
	}
	if req.Status != "" {
		// SetStatus keeps the completed flag in sync from birth.
		if err := task.SetStatus(domain.Status(req.Status)); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
				"Invalid task status", err)
			return
		}
	}

	created, err := h.taskStore.Create(r.Context(), userID, task)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created",
		slog.Int64("task_id", created.ID),
		slog.String("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(created))
}

// GetTask handles GET /api/tasks/{id} requests.
// Answers 404 both for missing tasks and for tasks owned by someone else.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
// Applies only the fields present in the body; a body with no recognized
// fields is a 400.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			"Validation error", err)
		return
	}

	update := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if update.IsEmpty() {
		log.Debug("rejected update with no fields",
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "No fields to update")
		return
	}

	task, err := h.taskStore.Update(r.Context(), userID, taskID, update)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task updated",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
// Deletion is physical; a second delete of the same id answers 404.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Delete(r.Context(), userID, taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task deleted",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusOK,
		shared.MessageResponse{Message: "Task deleted successfully"})
}

// ToggleComplete handles PATCH /api/tasks/{id}/complete requests.
// Sets the completed flag and derives status from it; toggling off a task
// that was in-progress resets it to pending.
func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := h.requireUserID(w, r)
	if !ok {
		return
	}

	taskID, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	var req ToggleCompleteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnprocessableEntity,
			"Validation error", err)
		return
	}

	task, err := h.taskStore.SetCompletion(r.Context(), userID, taskID, *req.Completed)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task completion toggled",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID),
		slog.Bool("completed", task.Completed))
	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}
