package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller could not be authenticated.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller is authenticated but may not perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a concurrent modification or state conflict.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected server-side failure.
var ErrInternal = errors.New("internal error")

// Inventory ledger errors.
var (
	// ErrRoleNotPermitted is returned when the actor's role may not record the requested direction.
	ErrRoleNotPermitted = errors.New("role not permitted for this transaction")
	// ErrInvalidDonor is returned when a referenced donor id does not resolve to a donor account.
	ErrInvalidDonor = errors.New("invalid donor")
	// ErrDuplicateEmail is returned when a walk-in donor email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInsufficientInventory is returned when the scope cannot cover an out request.
	ErrInsufficientInventory = errors.New("insufficient inventory")
	// ErrInsufficientGlobalInventory is returned when no organisation holds the requested blood type.
	ErrInsufficientGlobalInventory = errors.New("no organisation holds the requested blood type")
	// ErrScopeNotFound is returned when an availability scope does not resolve to a book-owning account.
	ErrScopeNotFound = errors.New("scope not found")
	// ErrInvalidBloodType is returned for a blood type outside the supported set.
	ErrInvalidBloodType = errors.New("invalid blood type")
	// ErrStorageFailure wraps any ledger or directory storage failure.
	ErrStorageFailure = errors.New("storage failure")
)

// AppError carries an HTTP-ish status code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets server-side AppErrors match ErrStorageFailure.
func (e *AppError) Is(target error) bool {
	return target == ErrStorageFailure && e.Code >= http.StatusInternalServerError
}

// InsufficientInventoryError reports the amount that was available when an out request was rejected.
type InsufficientInventoryError struct {
	BloodType string
	Requested int64
	Available int64
	// Global is set when no single organisation could be chosen for the request.
	Global bool
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Only %d ML of %s is available", e.Available, e.BloodType)
}

func (e *InsufficientInventoryError) Unwrap() error {
	if e.Global {
		return ErrInsufficientGlobalInventory
	}
	return ErrInsufficientInventory
}
