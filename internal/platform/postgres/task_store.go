package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/platform/logger"
	"github.com/phrazzld/todo-api/internal/store"
)

// taskColumns is the column list shared by every query that scans a full task row.
const taskColumns = "id, user_id, title, description, priority, status, completed, created_at, updated_at"

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// List implements store.TaskStore.List
// It returns the user's tasks matching the filter in insertion order.
// Filter predicates are ANDed; a nil filter field imposes no constraint.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID string,
	filter store.TaskFilter,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM tasks WHERE user_id = $1", taskColumns)
	args := []any{userID}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}

	// Insertion order approximates creation order; no pagination.
	sb.WriteString(" ORDER BY created_at, id")

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row",
				slog.String("error", err.Error()),
				slog.String("user_id", userID))
			return nil, MapError(err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("tasks listed",
		slog.String("user_id", userID),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// GetByID implements store.TaskStore.GetByID
// It retrieves a task only when both the ID and the owner match.
// Returns store.ErrTaskNotFound otherwise, never revealing whether the
// task exists under a different owner.
func (s *PostgresTaskStore) GetByID(
	ctx context.Context,
	userID string,
	taskID int64,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1 AND user_id = $2", taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, taskID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found",
				slog.Int64("task_id", taskID),
				slog.String("user_id", userID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	return task, nil
}

// Create implements store.TaskStore.Create
// It persists a new task owned by userID, overwriting any UserID already
// present on the input, and returns the stored row with its generated ID
// and timestamps.
func (s *PostgresTaskStore) Create(
	ctx context.Context,
	userID string,
	task *domain.Task,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Ownership comes from the authenticated caller, never from the input.
	task.UserID = userID

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO tasks (user_id, title, description, priority, status, completed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s
	`, taskColumns)

	created, err := scanTask(s.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Title,
		nullableString(task.Description),
		string(task.Priority),
		string(task.Status),
		task.Completed,
	))
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	log.Info("task created",
		slog.Int64("task_id", created.ID),
		slog.String("user_id", userID))
	return created, nil
}

// Update implements store.TaskStore.Update
// It applies only the set fields of the partial update and refreshes
// updated_at. Returns store.ErrTaskNotFound if the task does not exist
// for this owner.
func (s *PostgresTaskStore) Update(
	ctx context.Context,
	userID string,
	taskID int64,
	update store.TaskUpdate,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if update.IsEmpty() {
		// Nothing to apply; the handler rejects this earlier, but keep the
		// store safe against misuse.
		return s.GetByID(ctx, userID, taskID)
	}

	sets := []string{"updated_at = now()"}
	args := []any{taskID, userID}

	if update.Title != nil {
		args = append(args, *update.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if update.Description != nil {
		args = append(args, nullableString(*update.Description))
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, strings.Join(sets, ", "), taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update",
				slog.Int64("task_id", taskID),
				slog.String("user_id", userID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	log.Info("task updated",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID))
	return task, nil
}

// Delete implements store.TaskStore.Delete
// It physically removes the user's task; there is no soft delete.
// Returns store.ErrTaskNotFound if the task does not exist for this owner.
func (s *PostgresTaskStore) Delete(ctx context.Context, userID string, taskID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(
		ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2",
		taskID,
		userID,
	)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected == 0 {
		log.Debug("task not found for delete",
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID))
	return nil
}

// SetCompletion implements store.TaskStore.SetCompletion
// It sets the completed flag and derives status from it in the same
// statement, keeping the two fields consistent. Toggling off always yields
// pending, regardless of the prior status.
func (s *PostgresTaskStore) SetCompletion(
	ctx context.Context,
	userID string,
	taskID int64,
	completed bool,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	status := domain.StatusPending
	if completed {
		status = domain.StatusCompleted
	}

	query := fmt.Sprintf(`
		UPDATE tasks
		SET completed = $3, status = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING %s
	`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(
		ctx, query, taskID, userID, completed, string(status),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for completion toggle",
				slog.Int64("task_id", taskID),
				slog.String("user_id", userID))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to toggle task completion",
			slog.String("error", err.Error()),
			slog.Int64("task_id", taskID),
			slog.String("user_id", userID))
		return nil, MapError(err)
	}

	log.Info("task completion toggled",
		slog.Int64("task_id", taskID),
		slog.String("user_id", userID),
		slog.Bool("completed", completed))
	return task, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask scans one full task row in taskColumns order.
func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	var priority, status string

	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&description,
		&priority,
		&status,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	return &task, nil
}

// nullableString stores empty strings as NULL so the description column
// stays optional at the schema level.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
