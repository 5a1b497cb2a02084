// Package errors defines the prediction lifecycle error taxonomy and its
// mapping to HTTP status codes, so handlers produce consistent API responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Lifecycle errors returned by the prediction slot.
var (
	// ErrAlreadyRunning means the requested operation is invalid for the
	// slot's current status: submitting while occupied, or waiting on a
	// slot that is not processing anything.
	ErrAlreadyRunning = errors.New("attempted to re-initialize a prediction")

	// ErrNotComplete means a result was requested before the prediction
	// reached a terminal status.
	ErrNotComplete = errors.New("prediction is not yet complete")

	// ErrUnknown means the requested prediction id does not match the slot.
	ErrUnknown = errors.New("the requested prediction does not exist")

	// ErrReceiver means the completion channel failed structurally. Fatal to
	// the request, never to the process.
	ErrReceiver = errors.New("failed to wait for prediction")
)

// ValidationError is a single field-level validation failure. Loc is the path
// to the offending field, e.g. ["body", "input", "prompt"].
type ValidationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", strings.Join(e.Loc, "."), e.Msg)
}

// ValidationErrorSet collects field-level errors from input validation.
type ValidationErrorSet struct {
	Errors []ValidationError `json:"detail"`
}

// NewValidationErrorSet builds a set from one or more field errors.
func NewValidationErrorSet(errs ...ValidationError) *ValidationErrorSet {
	return &ValidationErrorSet{Errors: errs}
}

func (e *ValidationErrorSet) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// FillLoc returns a copy of the set with a location prefix prepended to every
// error, anchoring engine-reported field paths at the request body they came
// from. The receiver is left untouched: engines may hand out a retained set.
func (e *ValidationErrorSet) FillLoc(prefix ...string) *ValidationErrorSet {
	out := &ValidationErrorSet{Errors: make([]ValidationError, len(e.Errors))}
	for i, fieldErr := range e.Errors {
		loc := make([]string, 0, len(prefix)+len(fieldErr.Loc))
		loc = append(loc, prefix...)
		loc = append(loc, fieldErr.Loc...)
		fieldErr.Loc = loc
		out.Errors[i] = fieldErr
	}
	return out
}

// HTTPStatus maps a lifecycle error to the status code the transport layer
// should answer with.
func HTTPStatus(err error) int {
	var vset *ValidationErrorSet
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &vset):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAlreadyRunning):
		return http.StatusConflict
	case errors.Is(err, ErrUnknown):
		return http.StatusNotFound
	case errors.Is(err, ErrNotComplete):
		return http.StatusTooEarly
	default:
		return http.StatusInternalServerError
	}
}
