// Package errors maps domain failures onto the error taxonomy used by the
// HTTP layer: validation, not_found, transport, decode, internal.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tbraun92/gamehub/internal/domain"
)

// ErrorType categorizes an error for response formatting and metrics.
type ErrorType string

const (
	// TypeValidation indicates invalid input, rejected before any state
	// mutation (HTTP 400).
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates a referenced content/device/session is absent
	// (HTTP 404).
	TypeNotFound ErrorType = "not_found"
	// TypeTransport indicates a subscriber connection write failed. Handled
	// as an implicit disconnect; never surfaced to publishers.
	TypeTransport ErrorType = "transport"
	// TypeDecode indicates a malformed inbound protocol message. Discarded
	// silently; the connection stays open.
	TypeDecode ErrorType = "decode"
	// TypeInternal indicates a server-side failure (HTTP 500).
	TypeInternal ErrorType = "internal"
)

// Error is a categorized error with an underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the response status for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body sent for declined operations.
type ErrorResponse struct {
	Error string    `json:"error"`
	Type  ErrorType `json:"type"`
}

// ToResponse converts an Error into its JSON body.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Type: e.Type}
}

// Classify converts any error into a categorized *Error. Domain sentinel
// errors map onto their taxonomy entry; everything else is internal.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var structured *Error
	if errors.As(err, &structured) {
		return structured
	}

	switch {
	case errors.Is(err, domain.ErrInvalidContent), errors.Is(err, domain.ErrSessionEnded):
		return &Error{Type: TypeValidation, Message: err.Error(), Cause: err}
	case errors.Is(err, domain.ErrContentNotFound),
		errors.Is(err, domain.ErrDeviceNotFound),
		errors.Is(err, domain.ErrNoActiveSession):
		return &Error{Type: TypeNotFound, Message: err.Error(), Cause: err}
	default:
		return &Error{Type: TypeInternal, Message: "internal server error", Cause: err}
	}
}
