package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_MatchesStorageFailureOnlyFor5xx(t *testing.T) {
	cause := errors.New("connection reset")

	serverErr := NewAppError(http.StatusInternalServerError, "failed to begin transaction", cause)
	assert.ErrorIs(t, serverErr, ErrStorageFailure)
	assert.ErrorIs(t, serverErr, cause)
	assert.Equal(t, "failed to begin transaction: connection reset", serverErr.Error())

	clientErr := NewAppError(http.StatusBadRequest, "bad input", nil)
	assert.False(t, errors.Is(clientErr, ErrStorageFailure))
	assert.Equal(t, "bad input", clientErr.Error())
}

func TestInsufficientInventoryError(t *testing.T) {
	err := &InsufficientInventoryError{BloodType: "A+", Requested: 2, Available: 1}
	wrapped := fmt.Errorf("recording out transaction: %w", err)

	assert.ErrorIs(t, wrapped, ErrInsufficientInventory)
	assert.False(t, errors.Is(wrapped, ErrInsufficientGlobalInventory))
	assert.Equal(t, "Only 1 ML of A+ is available", err.Error())

	var target *InsufficientInventoryError
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, int64(1), target.Available)
	assert.Equal(t, int64(2), target.Requested)

	global := &InsufficientInventoryError{BloodType: "O-", Requested: 5, Global: true}
	assert.ErrorIs(t, global, ErrInsufficientGlobalInventory)
	assert.Equal(t, "Only 0 ML of O- is available", global.Error())
}
