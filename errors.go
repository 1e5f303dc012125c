package designkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for designkit operations.
var (
	// ErrForbidden is returned when a permission check denies an action.
	ErrForbidden = errors.New("designkit: forbidden")

	// ErrInvalidPolicy is returned when roles or permissions fail validation.
	ErrInvalidPolicy = errors.New("designkit: invalid policy")

	// ErrInvalidRole is returned when a role is referenced but not defined.
	ErrInvalidRole = errors.New("designkit: invalid role")

	// ErrInvalidFilter is returned when a row filter expression cannot be compiled or run.
	ErrInvalidFilter = errors.New("designkit: invalid row filter")

	// ErrNotFound is returned when a stored role or object config does not exist.
	ErrNotFound = errors.New("designkit: not found")

	// ErrNoActorID is returned when actor ID is not found in context for audit.
	ErrNoActorID = errors.New("designkit: no actor ID in context")

	// ErrDatabaseError is returned when a database operation fails.
	ErrDatabaseError = errors.New("designkit: database error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err     error  // Underlying sentinel error
	Message string // Additional context
	Object  string // Object involved (if applicable)
	Action  Action // Action involved (if applicable)
	Role    string // Role involved (if applicable)
	UserID  string // User involved (if applicable)
	ActorID string // Actor who triggered the error (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithObject adds object information to the error.
func (e *Error) WithObject(object string) *Error {
	e.Object = object
	return e
}

// WithAction adds action information to the error.
func (e *Error) WithAction(action Action) *Error {
	e.Action = action
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(role string) *Error {
	e.Role = role
	return e
}

// WithUser adds user information to the error.
func (e *Error) WithUser(userID string) *Error {
	e.UserID = userID
	return e
}

// WithActor adds actor information to the error.
func (e *Error) WithActor(actorID string) *Error {
	e.ActorID = actorID
	return e
}

// IsForbidden checks if an error is a permission denial.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInvalidPolicy checks if an error is due to an invalid policy.
func IsInvalidPolicy(err error) bool {
	return errors.Is(err, ErrInvalidPolicy)
}

// IsInvalidRole checks if an error is due to an undefined role.
func IsInvalidRole(err error) bool {
	return errors.Is(err, ErrInvalidRole)
}

// IsNotFound checks if an error is due to a missing role or object config.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
