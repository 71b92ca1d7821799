package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	t.Run("carries code and message", func(t *testing.T) {
		err := NewValidationError("tenant id is required")

		assert.Equal(t, CodeValidation, err.Code)
		assert.Equal(t, "tenant id is required", err.Error())
	})

	t.Run("preserves the cause through Unwrap", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewDataSourceError("invoice query failed", cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "invoice query failed", err.Error())
	})

	t.Run("internal error hides the cause from callers", func(t *testing.T) {
		err := NewInternalError(errors.New("nil pointer dereference"))

		assert.Equal(t, "internal error", err.Error())
		assert.Equal(t, CodeInternal, err.Code)
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("unwraps through fmt.Errorf chains", func(t *testing.T) {
		wrapped := fmt.Errorf("computing dashboard: %w", NewDataSourceError("query failed", nil))

		assert.Equal(t, CodeDataSource, CodeOf(wrapped))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})

	t.Run("nil-safe helpers", func(t *testing.T) {
		assert.True(t, IsNotFound(NewNotFoundError("report not found")))
		assert.True(t, IsDataSource(NewDataSourceError("down", nil)))
		assert.True(t, IsValidation(ErrInvalidInput))
		assert.False(t, IsNotFound(errors.New("boom")))
	})
}
