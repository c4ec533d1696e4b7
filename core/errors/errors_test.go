package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewAppError(ErrGetFailed, "Failed to get instance", cause)

	assert.Equal(t, "GET_FAILED: Failed to get instance: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NOT_FOUND: Instance not found", NewAppError(ErrNotFound, "Instance not found", nil).Error())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", NewAppError(ErrForbidden, "nope", nil))

	assert.Equal(t, ErrForbidden, CodeOf(wrapped))
	assert.True(t, stderrors.Is(wrapped, NewAppError(ErrForbidden, "", nil)))
	assert.False(t, stderrors.Is(wrapped, NewAppError(ErrNotFound, "", nil)))
	assert.Equal(t, ErrInternalServer, CodeOf(stderrors.New("plain")))
}
