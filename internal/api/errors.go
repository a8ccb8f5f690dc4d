package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors. ErrKeySetUnavailable rides the same 401 as
	// token errors: "provider unreachable" and "bad token" are not
	// distinguished at the HTTP boundary.
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrKeySetUnavailable):
		return http.StatusUnauthorized

	// Not found errors. Unowned tasks produce the same error as missing
	// ones, so this is also the "not yours" status.
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Validation errors
	case errors.Is(err, store.ErrInvalidEntity),
		isDomainValidationError(err):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// isDomainValidationError reports whether err is one of the task entity's
// own validation sentinels.
func isDomainValidationError(err error) bool {
	return errors.Is(err, domain.ErrTaskUserIDEmpty) ||
		errors.Is(err, domain.ErrTaskTitleEmpty) ||
		errors.Is(err, domain.ErrTaskTitleTooLong) ||
		errors.Is(err, domain.ErrTaskDescriptionTooLong) ||
		errors.Is(err, domain.ErrInvalidPriority) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrStatusCompletedMismatch)
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrKeySetUnavailable):
		return "Invalid token"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid task data"

	// The domain sentinels carry static, client-safe text
	// ("task title cannot exceed 200 characters"), so pass it through.
	case isDomainValidationError(err):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}
