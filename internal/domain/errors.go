package domain

import (
	"errors"
	"net/http"
)

// Sentinels for errors.Is. The typed errors below match them.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")

	// ErrCycleDetected marks a folder chain that loops back on itself.
	// Resolvers log it and degrade; folder moves reject it as a validation error.
	ErrCycleDetected = errors.New("folder cycle detected")
)

// HTTPError is implemented by errors that carry their own status code
type HTTPError interface {
	error
	StatusCode() int
}

// NotFoundError reports a missing record that the caller named explicitly
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string        { return e.Message }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError reports input rejected before anything was written
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError names the record that already holds a unique value
type ConflictError struct {
	Message      string
	ResourceType string // folder, prompt, mcp_server
	ResourceID   string
}

func (e *ConflictError) Error() string        { return e.Message }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
