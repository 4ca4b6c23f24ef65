// ABOUTME: Domain-level sentinel errors for the page pipeline
// ABOUTME: AdapterError carries adapter context and matches its sentinel through errors.Is
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentifier indicates a malformed or out-of-range page id. Recovered with a not-found page.
	ErrInvalidIdentifier = errors.New("invalid page identifier")

	// ErrPageNotFound indicates a well-formed id the adapter knows it cannot serve (e.g. article index past the end).
	ErrPageNotFound = errors.New("page not found")

	// ErrContentUnavailable indicates the upstream has no content right now. Retryable.
	ErrContentUnavailable = errors.New("content unavailable")

	// ErrUpstream indicates a network or upstream service failure. Retryable.
	ErrUpstream = errors.New("upstream error")

	// ErrValidation indicates bad input or an unusable upstream payload. Never retried.
	ErrValidation = errors.New("validation error")
)

// ErrorCode classifies an AdapterError.
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "PAGE_NOT_FOUND"
	CodeContentUnavailable ErrorCode = "CONTENT_UNAVAILABLE"
	CodeUpstream           ErrorCode = "UPSTREAM_ERROR"
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
)

// AdapterError is returned by content adapters.
type AdapterError struct {
	Code    ErrorCode
	Adapter string
	PageID  string
	Status  int // upstream HTTP status, 0 when not applicable
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	msg := fmt.Sprintf("%s: %s page %s: %s", e.Code, e.Adapter, e.PageID, e.Message)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Cause
}

// Is maps the code onto the matching sentinel.
func (e *AdapterError) Is(target error) bool {
	switch e.Code {
	case CodeNotFound:
		return target == ErrPageNotFound
	case CodeContentUnavailable:
		return target == ErrContentUnavailable
	case CodeUpstream:
		return target == ErrUpstream
	case CodeValidation:
		return target == ErrValidation
	}
	return false
}

// NewAdapterError builds an AdapterError for the given adapter and page.
func NewAdapterError(code ErrorCode, adapter string, id PageID, message string, cause error) *AdapterError {
	return &AdapterError{
		Code:    code,
		Adapter: adapter,
		PageID:  id.String(),
		Message: message,
		Cause:   cause,
	}
}

// IsAdapterFailure reports whether err is one of the adapter failure kinds the boundary renders
// as a fallback page instead of an HTTP error.
func IsAdapterFailure(err error) bool {
	return errors.Is(err, ErrPageNotFound) ||
		errors.Is(err, ErrContentUnavailable) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrValidation)
}

func isErr(err, target error) bool {
	return errors.Is(err, target)
}
