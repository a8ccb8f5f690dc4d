package domain

import (
	"strings"
	"testing"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	task, err := NewTask("user-1", "Buy milk", "Two liters")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.UserID != "user-1" {
		t.Errorf("Expected user ID user-1, got %s", task.UserID)
	}

	if task.Title != "Buy milk" {
		t.Errorf("Expected title Buy milk, got %s", task.Title)
	}

	if task.Priority != PriorityMedium {
		t.Errorf("Expected default priority medium, got %s", task.Priority)
	}

	if task.Status != StatusPending {
		t.Errorf("Expected default status pending, got %s", task.Status)
	}

	if task.Completed {
		t.Error("Expected new task to not be completed")
	}

	// Test empty user ID
	_, err = NewTask("", "Buy milk", "")
	if err != ErrTaskUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskUserIDEmpty, err)
	}

	// Test empty title
	_, err = NewTask("user-1", "", "")
	if err != ErrTaskTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleEmpty, err)
	}

	// Test title over the limit
	_, err = NewTask("user-1", strings.Repeat("a", MaxTitleLength+1), "")
	if err != ErrTaskTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleTooLong, err)
	}

	// Test description over the limit
	_, err = NewTask("user-1", "Buy milk", strings.Repeat("a", MaxDescriptionLength+1))
	if err != ErrTaskDescriptionTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskDescriptionTooLong, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()

	validTask := Task{
		UserID:   "user-1",
		Title:    "Buy milk",
		Priority: PriorityMedium,
		Status:   StatusPending,
	}

	if err := validTask.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Boundary: title exactly at the limit is valid
	atLimit := validTask
	atLimit.Title = strings.Repeat("a", MaxTitleLength)
	if err := atLimit.Validate(); err != nil {
		t.Errorf("Expected no error for title at limit, got %v", err)
	}

	// Limits count characters, not bytes: a title of MaxTitleLength
	// two-byte runes is valid even though it is twice that in bytes.
	multibyte := validTask
	multibyte.Title = strings.Repeat("é", MaxTitleLength)
	multibyte.Description = strings.Repeat("é", MaxDescriptionLength)
	if err := multibyte.Validate(); err != nil {
		t.Errorf("Expected no error for multibyte fields at limit, got %v", err)
	}

	multibyte.Title = strings.Repeat("é", MaxTitleLength+1)
	if err := multibyte.Validate(); err != ErrTaskTitleTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleTooLong, err)
	}

	multibyte.Title = "Buy milk"
	multibyte.Description = strings.Repeat("é", MaxDescriptionLength+1)
	if err := multibyte.Validate(); err != ErrTaskDescriptionTooLong {
		t.Errorf("Expected error %v, got %v", ErrTaskDescriptionTooLong, err)
	}

	invalidTask := validTask
	invalidTask.Priority = Priority("urgent")
	if err := invalidTask.Validate(); err != ErrInvalidPriority {
		t.Errorf("Expected error %v, got %v", ErrInvalidPriority, err)
	}

	invalidTask = validTask
	invalidTask.Status = Status("done")
	if err := invalidTask.Validate(); err != ErrInvalidStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidStatus, err)
	}

	// Completed flag must agree with status
	invalidTask = validTask
	invalidTask.Completed = true
	if err := invalidTask.Validate(); err != ErrStatusCompletedMismatch {
		t.Errorf("Expected error %v, got %v", ErrStatusCompletedMismatch, err)
	}

	invalidTask = validTask
	invalidTask.Status = StatusCompleted
	invalidTask.Completed = false
	if err := invalidTask.Validate(); err != ErrStatusCompletedMismatch {
		t.Errorf("Expected error %v, got %v", ErrStatusCompletedMismatch, err)
	}
}

func TestTaskSetCompleted(t *testing.T) {
	t.Parallel()

	// Toggling on from every prior status yields completed/completed
	for _, prior := range []Status{StatusPending, StatusInProgress, StatusCompleted} {
		task := Task{UserID: "user-1", Title: "t", Priority: PriorityMedium}
		if err := task.SetStatus(prior); err != nil {
			t.Fatalf("SetStatus(%s): %v", prior, err)
		}

		task.SetCompleted(true)
		if !task.Completed || task.Status != StatusCompleted {
			t.Errorf("SetCompleted(true) from %s: got completed=%v status=%s",
				prior, task.Completed, task.Status)
		}
	}

	// Toggling off always resets to pending, even from in-progress
	for _, prior := range []Status{StatusPending, StatusInProgress, StatusCompleted} {
		task := Task{UserID: "user-1", Title: "t", Priority: PriorityMedium}
		if err := task.SetStatus(prior); err != nil {
			t.Fatalf("SetStatus(%s): %v", prior, err)
		}

		task.SetCompleted(false)
		if task.Completed || task.Status != StatusPending {
			t.Errorf("SetCompleted(false) from %s: got completed=%v status=%s",
				prior, task.Completed, task.Status)
		}
	}
}

func TestTaskSetStatus(t *testing.T) {
	t.Parallel()

	task := Task{UserID: "user-1", Title: "t", Priority: PriorityMedium, Status: StatusPending}

	if err := task.SetStatus(StatusInProgress); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if task.Completed {
		t.Error("Expected in-progress task to not be completed")
	}

	if err := task.SetStatus(StatusCompleted); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !task.Completed {
		t.Error("Expected completed status to set the completed flag")
	}

	if err := task.SetStatus(Status("bogus")); err != ErrInvalidStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidStatus, err)
	}
}
