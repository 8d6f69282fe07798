package stagekit

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
		{"ErrNotFound", ErrNotFound, "stagekit: not found"},
		{"ErrValidation", ErrValidation, "stagekit: validation failed"},
		{"ErrUnknownEntity", ErrUnknownEntity, "stagekit: unknown entity"},
		{"ErrUnknownField", ErrUnknownField, "stagekit: unknown search field"},
		{"ErrUnauthorized", ErrUnauthorized, "stagekit: unauthorized"},
		{"ErrConfiguration", ErrConfiguration, "stagekit: configuration error"},
		{"ErrPersistence", ErrPersistence, "stagekit: persistence error"},
		{"ErrInvalidRole", ErrInvalidRole, "stagekit: invalid role"},
		{"ErrInvalidResource", ErrInvalidResource, "stagekit: invalid resource type"},
		{"ErrAlreadyGranted", ErrAlreadyGranted, "stagekit: roles already granted"},
		{"ErrNotGranted", ErrNotGranted, "stagekit: roles not granted"},
		{"ErrNoUserID", ErrNoUserID, "stagekit: no user ID in context"},
		{"ErrNoActorID", ErrNoActorID, "stagekit: no actor ID in context"},
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
		err := NewError(ErrUnknownField, `entity "Venue" has no search field "capacity"`)
		assert.Equal(t, `stagekit: unknown search field: entity "Venue" has no search field "capacity"`, err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := &Error{Err: ErrNotFound}
		assert.Equal(t, "stagekit: not found", err.Error())
	})
}

// TestError_Unwrap tests errors.Is/As through the wrapper
func TestError_Unwrap(t *testing.T) {
	err := NewError(ErrUnauthorized, "missing required roles")

	assert.Equal(t, ErrUnauthorized, err.Unwrap())
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNotFound))

	var wrapped *Error
	assert.True(t, errors.As(fmt.Errorf("outer: %w", err), &wrapped))
	assert.Equal(t, "missing required roles", wrapped.Message)
}

// TestErrorBuilders tests the fluent context builders
func TestErrorBuilders(t *testing.T) {
	err := NewError(ErrUnauthorized, "denied").
		WithEntity("Event").
		WithResource(ResourceEvent, 42).
		WithField("name").
		WithUser(7).
		WithActor(9)

	assert.Equal(t, "Event", err.Entity)
	assert.Equal(t, ResourceEvent, err.Resource)
	assert.Equal(t, int64(42), err.ResourceID)
	assert.Equal(t, "name", err.Field)
	assert.Equal(t, int64(7), err.UserID)
	assert.Equal(t, int64(9), err.ActorID)
}

// TestErrorPredicates tests the Is* helper functions
func TestErrorPredicates(t *testing.T) {
	assert.True(t, IsNotFound(NewError(ErrNotFound, "")))
	assert.True(t, IsValidation(NewError(ErrValidation, "")))
	assert.True(t, IsUnauthorized(NewError(ErrUnauthorized, "")))
	assert.True(t, IsUnknownField(NewError(ErrUnknownField, "")))
	assert.True(t, IsConfiguration(NewError(ErrConfiguration, "")))
	assert.True(t, IsPersistence(NewError(ErrPersistence, "")))

	assert.False(t, IsNotFound(ErrValidation))
	assert.False(t, IsNotFound(nil))
}
