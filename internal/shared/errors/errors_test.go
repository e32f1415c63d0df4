package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "name is required", NewValidationError("name is required").Error())
	assert.Equal(t, "validation failed (nombre is required)",
		NewValidationError("validation failed", "nombre is required").Error())
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("create banner: %w", NewValidationError("name is required"))

	assert.True(t, IsValidationError(wrapped))
	assert.False(t, IsDecodeError(wrapped))
	assert.False(t, IsUnauthorizedError(wrapped))
	assert.True(t, IsUnauthorizedError(NewUnauthorizedError("not logged in")))
	assert.Nil(t, GetAppError(New("plain")))
}

func TestDecodeError_Unwrap(t *testing.T) {
	cause := New("unexpected end of JSON input")
	err := NewDecodeError("decode list response", cause)

	assert.True(t, IsDecodeError(err))
	assert.ErrorIs(t, err, cause)
}

func TestTransportError(t *testing.T) {
	err := fmt.Errorf("delete agenda: %w", &TransportError{
		Method: http.MethodDelete,
		Path:   "eventos/7",
		Status: http.StatusMethodNotAllowed,
		Body:   "method not allowed",
	})

	tErr, ok := AsTransportError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusMethodNotAllowed, tErr.Status)
	assert.Contains(t, err.Error(), "DELETE eventos/7 405: method not allowed")

	_, ok = AsTransportError(New("dial tcp: refused"))
	assert.False(t, ok)
}
