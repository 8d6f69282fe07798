package stagekit

import (
	"errors"
	"fmt"
)

// Sentinel errors for StageKit operations.
var (
	// ErrNotFound is returned when an entity with the requested ID does not exist.
	ErrNotFound = errors.New("stagekit: not found")

	// ErrValidation is returned when input fails validation (malformed search
	// query, empty role set, ...).
	ErrValidation = errors.New("stagekit: validation failed")

	// ErrUnknownEntity is returned when an entity name is not defined in the registry.
	ErrUnknownEntity = errors.New("stagekit: unknown entity")

	// ErrUnknownField is returned when a search term references an undeclared field.
	ErrUnknownField = errors.New("stagekit: unknown search field")

	// ErrUnauthorized is returned when a principal lacks the required roles.
	ErrUnauthorized = errors.New("stagekit: unauthorized")

	// ErrConfiguration is returned when a registry declaration is internally
	// inconsistent (cascade over a missing navigation, owner without a
	// resource tag, ...).
	ErrConfiguration = errors.New("stagekit: configuration error")

	// ErrPersistence is returned when a database operation fails.
	ErrPersistence = errors.New("stagekit: persistence error")

	// ErrInvalidRole is returned when a role is not part of the membership vocabulary.
	ErrInvalidRole = errors.New("stagekit: invalid role")

	// ErrInvalidResource is returned when a resource type is not part of the vocabulary.
	ErrInvalidResource = errors.New("stagekit: invalid resource type")

	// ErrAlreadyGranted is returned when granting roles the user already holds.
	ErrAlreadyGranted = errors.New("stagekit: roles already granted")

	// ErrNotGranted is returned when revoking roles the user does not hold.
	ErrNotGranted = errors.New("stagekit: roles not granted")

	// ErrNoUserID is returned when the user ID is not found in context.
	ErrNoUserID = errors.New("stagekit: no user ID in context")

	// ErrNoActorID is returned when the actor ID is not found in context for audit.
	ErrNoActorID = errors.New("stagekit: no actor ID in context")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err        error        // Underlying sentinel error
	Message    string       // Additional context
	Entity     string       // Entity name involved
	Resource   ResourceType // Resource type involved
	ResourceID int64        // Resource ID involved
	Field      string       // Search field involved (if applicable)
	UserID     int64        // User involved (if applicable)
	ActorID    int64        // Actor who triggered the error (if applicable)
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

// WithEntity adds the entity name to the error.
func (e *Error) WithEntity(entity string) *Error {
	e.Entity = entity
	return e
}

// WithResource adds resource information to the error.
func (e *Error) WithResource(resource ResourceType, resourceID int64) *Error {
	e.Resource = resource
	e.ResourceID = resourceID
	return e
}

// WithField adds the search field to the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithUser adds user information to the error.
func (e *Error) WithUser(userID int64) *Error {
	e.UserID = userID
	return e
}

// WithActor adds actor information to the error.
func (e *Error) WithActor(actorID int64) *Error {
	e.ActorID = actorID
	return e
}

// IsNotFound checks if an error is a missing-entity error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnauthorized checks if an error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsUnknownField checks if an error is due to an undeclared search field.
func IsUnknownField(err error) bool {
	return errors.Is(err, ErrUnknownField)
}

// IsConfiguration checks if an error is due to an inconsistent registry declaration.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsPersistence checks if an error is a database error.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}
