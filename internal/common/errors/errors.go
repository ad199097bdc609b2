// Package errors provides the standardized error taxonomy for the
// notification pipeline. Every failure crossing the orchestrator boundary is
// one of these typed results; nothing is allowed to escape as a panic.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Document failures: fatal for the document, never retried.
	ErrCodeInvalidDocument  ErrorCode = "INVALID_DOCUMENT"
	ErrCodeMissingFields    ErrorCode = "MISSING_FIELDS"
	ErrCodeSchemaValidation ErrorCode = "SCHEMA_VALIDATION_FAILED"

	// Template failures: configuration/data mismatch, fatal for the document.
	ErrCodeTemplateNotFound ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateParams   ErrorCode = "TEMPLATE_PARAMS_MISSING"

	// Delivery failures. Breaker rejections and raw gateway errors stay
	// inside the dispatcher; only the terminal outcomes cross this boundary.
	ErrCodeDispatchExhausted ErrorCode = "DISPATCH_EXHAUSTED"
	ErrCodeDispatchCancelled ErrorCode = "DISPATCH_CANCELLED"

	// Transport bookkeeping.
	ErrCodeDedupeUnavailable ErrorCode = "DEDUPE_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewInvalidDocumentError creates a non-retryable parse error.
func NewInvalidDocumentError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDocument,
		Message:   "Document could not be parsed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewMissingFieldsError creates a non-retryable extraction error. The cause
// is the xmlforge ExtractionFailure carrying the missing field names.
func NewMissingFieldsError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingFields,
		Message:   "Required notification fields missing from document",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewSchemaValidationError creates a non-retryable validation error for flat
// JSON order events.
func NewSchemaValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidation,
		Message:   "Order event failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template lookup error.
func NewTemplateNotFoundError(messageType, status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "No template registered for message type and status",
		Details:   fmt.Sprintf("type: %s, status: %s", messageType, status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateParamsError creates a non-retryable render error. The cause is
// the smsforge ParameterError naming the missing parameters.
func NewTemplateParamsError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateParams,
		Message:   "Template parameters missing, message not sent",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDispatchExhaustedError creates the terminal delivery error surfaced
// after the retry budget is spent. The pipeline itself never retries it;
// the retryable flag tells the transport that redelivery may still succeed.
func NewDispatchExhaustedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchExhausted,
		Message:   "Delivery failed after exhausting retries",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDispatchCancelledError creates the error surfaced when the caller's
// context aborts a dispatch mid-flight.
func NewDispatchCancelledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchCancelled,
		Message:   "Delivery cancelled by caller",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewDedupeUnavailableError creates a retryable error for dedupe store
// outages: the document itself is fine, redelivery may succeed.
func NewDedupeUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDedupeUnavailable,
		Message:   "Duplicate guard unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsDocumentFatal reports whether the code identifies a failure that is
// permanent for the document (re-delivering the same payload cannot help).
func IsDocumentFatal(code ErrorCode) bool {
	switch code {
	case ErrCodeInvalidDocument,
		ErrCodeMissingFields,
		ErrCodeSchemaValidation,
		ErrCodeTemplateNotFound,
		ErrCodeTemplateParams:
		return true
	default:
		return false
	}
}
