package models

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy for the scheduling engine. Validation and conflict errors
// are detected before any mutation and surfaced to the caller; internal
// errors wrap persistence failures. Check with errors.As.

// ValidationError reports malformed or missing input. Always recoverable,
// never leaves partial state behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports that a scheduling invariant would be violated. It
// names the conflicting entity so the caller can show what is in the way.
type ConflictError struct {
	Resource   string // "request" or "route"
	ConflictID string // identifier of the conflicting entity
	Reason     string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s (conflicts with %s %s)", e.Reason, e.Resource, e.ConflictID)
}

// NotFoundError reports a missing bin, worker, request or route.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// AssignmentError reports an ineligible or at-capacity worker.
type AssignmentError struct {
	WorkerID string
	Reason   string
}

func (e *AssignmentError) Error() string {
	return fmt.Sprintf("cannot assign worker %s: %s", e.WorkerID, e.Reason)
}

// InternalError wraps a persistence or infrastructure failure.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an engine error onto its HTTP status code.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		ce *ConflictError
		ne *NotFoundError
		ae *AssignmentError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &ne):
		return http.StatusNotFound
	case errors.As(err, &ae):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
