package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrAlreadyExecuted     = errors.New("action already executed")
	ErrInvalidState        = errors.New("invalid action state")
	ErrUnsupportedAction   = errors.New("unsupported action type")
	ErrInvariant           = errors.New("domain invariant violated")
	ErrRollbackUnavailable = errors.New("rollback unavailable")
	ErrUnavailable         = errors.New("unavailable")
)

// ValidationError provides programmatic access to field-level validation failures.
// Use errors.Is(err, ErrValidation) for simple checks, or errors.As(err, &verr) to
// access verr.Fields for per-field error details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ExecutionError wraps a failure that occurred inside an executor while the
// action record was still Pending. The record is left untouched so the
// operator can correct the payload and retry.
type ExecutionError struct {
	ActionType string
	Err        error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s: %v", e.ActionType, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
