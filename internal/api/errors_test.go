package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"key set unavailable", auth.ErrKeySetUnavailable, http.StatusUnauthorized},
		{"task not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"invalid entity", store.ErrInvalidEntity, http.StatusUnprocessableEntity},
		{"title too long", domain.ErrTaskTitleTooLong, http.StatusUnprocessableEntity},
		{"description too long", domain.ErrTaskDescriptionTooLong, http.StatusUnprocessableEntity},
		{"invalid priority", domain.ErrInvalidPriority, http.StatusUnprocessableEntity},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	// Domain validation sentinels surface their own descriptive text
	assert.Equal(t, "task title cannot exceed 200 characters",
		GetSafeErrorMessage(domain.ErrTaskTitleTooLong))
	assert.Equal(t, "task description cannot exceed 1000 characters",
		GetSafeErrorMessage(domain.ErrTaskDescriptionTooLong))
	assert.Equal(t, "task title cannot be empty",
		GetSafeErrorMessage(domain.ErrTaskTitleEmpty))

	// Everything else stays sanitized
	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Invalid task data",
		GetSafeErrorMessage(fmt.Errorf("%w: details", store.ErrInvalidEntity)))
	assert.Equal(t, "An unexpected error occurred",
		GetSafeErrorMessage(errors.New("pq: connection refused")))
}
