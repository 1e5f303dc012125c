package designkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSentinelErrors tests that all sentinel errors are properly defined
func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrForbidden", ErrForbidden, "designkit: forbidden"},
		{"ErrInvalidPolicy", ErrInvalidPolicy, "designkit: invalid policy"},
		{"ErrInvalidRole", ErrInvalidRole, "designkit: invalid role"},
		{"ErrInvalidFilter", ErrInvalidFilter, "designkit: invalid row filter"},
		{"ErrNotFound", ErrNotFound, "designkit: not found"},
		{"ErrNoActorID", ErrNoActorID, "designkit: no actor ID in context"},
		{"ErrDatabaseError", ErrDatabaseError, "designkit: database error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

// TestError_Error tests the Error method of Error struct
func TestError_Error(t *testing.T) {
	t.Run("With message", func(t *testing.T) {
		err := &Error{Err: ErrInvalidRole, Message: "role 'admin' not defined"}
		assert.Equal(t, "designkit: invalid role: role 'admin' not defined", err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := &Error{Err: ErrInvalidRole}
		assert.Equal(t, "designkit: invalid role", err.Error())
	})
}

// TestErrorBuilders tests the fluent context setters
func TestErrorBuilders(t *testing.T) {
	err := NewError(ErrForbidden, "denied").
		WithObject("orders").
		WithAction(ActionDelete).
		WithRole("viewer").
		WithUser("u1").
		WithActor("admin")

	assert.Equal(t, ErrForbidden, err.Err)
	assert.Equal(t, "denied", err.Message)
	assert.Equal(t, "orders", err.Object)
	assert.Equal(t, ActionDelete, err.Action)
	assert.Equal(t, "viewer", err.Role)
	assert.Equal(t, "u1", err.UserID)
	assert.Equal(t, "admin", err.ActorID)
}

// TestErrorIsAndUnwrap tests errors.Is through wrapping
func TestErrorIsAndUnwrap(t *testing.T) {
	err := NewError(ErrNotFound, "role not defined")
	wrapped := fmt.Errorf("save failed: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrForbidden))
	assert.Equal(t, ErrNotFound, errors.Unwrap(err))

	var dkErr *Error
	assert.True(t, errors.As(wrapped, &dkErr))
	assert.Same(t, err, dkErr)
}

// TestErrorHelpers tests the IsX classification helpers
func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		expect bool
	}{
		{"IsForbidden sentinel", ErrForbidden, IsForbidden, true},
		{"IsForbidden wrapped", NewError(ErrForbidden, "x"), IsForbidden, true},
		{"IsForbidden other", ErrNotFound, IsForbidden, false},
		{"IsInvalidPolicy", NewError(ErrInvalidPolicy, "x"), IsInvalidPolicy, true},
		{"IsInvalidRole", NewError(ErrInvalidRole, "x"), IsInvalidRole, true},
		{"IsNotFound", NewError(ErrNotFound, "x"), IsNotFound, true},
		{"nil error", nil, IsForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.check(tt.err))
		})
	}
}
