package mocks

import (
	"context"

	"github.com/phrazzld/todo-api/internal/service/auth"
)

// MockTokenVerifier implements auth.TokenVerifier for testing.
type MockTokenVerifier struct {
	// VerifyFn allows test cases to mock the Verify behavior
	VerifyFn func(ctx context.Context, tokenString string) (string, error)

	// Default values used when VerifyFn isn't explicitly defined
	UserID string
	Err    error
}

// Ensure MockTokenVerifier implements auth.TokenVerifier interface
var _ auth.TokenVerifier = (*MockTokenVerifier)(nil)

// Verify implements the auth.TokenVerifier interface
func (m *MockTokenVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, tokenString)
	}
	return m.UserID, m.Err
}
