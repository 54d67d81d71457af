package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is the machine-readable error kind reported to callers.
type ErrorCode string

const (
	ErrInvalidInput         ErrorCode = "InvalidInput"         // 400
	ErrUnauthorized         ErrorCode = "Unauthorized"         // 401
	ErrNotFound             ErrorCode = "NotFound"             // 404
	ErrPayloadTooLarge      ErrorCode = "PayloadTooLarge"      // 413
	ErrUnsupportedMediaType ErrorCode = "UnsupportedMediaType" // 415
	ErrRateLimited          ErrorCode = "RateLimited"          // 429
	ErrInternal             ErrorCode = "Internal"             // 500
	ErrFetch                ErrorCode = "FetchError"           // 502
	ErrGeneration           ErrorCode = "GenerationError"      // 502
	ErrInvalidAIResponse    ErrorCode = "InvalidAIResponse"    // 502
)

// BriefError is a structured error with code, status, and details.
type BriefError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any

	// RawResponse holds the unparsed model output for InvalidAIResponse.
	RawResponse string

	Cause error
}

// Error implements the error interface.
func (e *BriefError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *BriefError) Unwrap() error {
	return e.Cause
}

// NewInvalidInput creates a 400 error for malformed or unclassifiable input.
func NewInvalidInput(msg string) *BriefError {
	return &BriefError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewUnauthorized creates a 401 error for callers that fail the auth gate.
func NewUnauthorized() *BriefError {
	return &BriefError{
		Code:    ErrUnauthorized,
		Status:  401,
		Message: "missing or invalid authorization token",
	}
}

// NewNotFound creates a 404 error for when a capsule cannot be found.
func NewNotFound(id string) *BriefError {
	return &BriefError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("capsule not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewPayloadTooLarge creates a 413 error when text or file input exceeds its ceiling.
func NewPayloadTooLarge(what string, max, actual int64) *BriefError {
	return &BriefError{
		Code:    ErrPayloadTooLarge,
		Status:  413,
		Message: fmt.Sprintf("%s exceeds maximum size: %d (max %d)", what, actual, max),
		Details: map[string]any{"max": max, "actual": actual},
	}
}

// NewUnsupportedMediaType creates a 415 error for MIME types outside the accepted families.
func NewUnsupportedMediaType(mimeType string) *BriefError {
	return &BriefError{
		Code:    ErrUnsupportedMediaType,
		Status:  415,
		Message: fmt.Sprintf("unsupported media type: %q", mimeType),
		Details: map[string]any{"mime_type": mimeType},
	}
}

// NewRateLimited creates a 429 error. retryAfter is in seconds; zero means unknown.
func NewRateLimited(msg string, retryAfter int) *BriefError {
	e := &BriefError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: msg,
	}
	if retryAfter > 0 {
		e.Details = map[string]any{"retry_after_seconds": retryAfter}
	}
	return e
}

// NewFetch creates a 502 error for upstream retrieval failures.
func NewFetch(msg string, cause error) *BriefError {
	return &BriefError{
		Code:    ErrFetch,
		Status:  502,
		Message: msg,
		Cause:   cause,
	}
}

// NewGeneration creates a 502 error for model invocation failures.
func NewGeneration(msg string, cause error) *BriefError {
	return &BriefError{
		Code:    ErrGeneration,
		Status:  502,
		Message: msg,
		Cause:   cause,
	}
}

// NewInvalidAIResponse creates a 502 error when the model output is not a JSON object.
func NewInvalidAIResponse(raw string, cause error) *BriefError {
	return &BriefError{
		Code:        ErrInvalidAIResponse,
		Status:      502,
		Message:     "model response is not a valid JSON object",
		RawResponse: raw,
		Cause:       cause,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *BriefError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &BriefError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Cause:   err,
	}
}

// As extracts a *BriefError from err's chain.
func As(err error) (*BriefError, bool) {
	var bErr *BriefError
	if stderrors.As(err, &bErr) {
		return bErr, true
	}
	return nil, false
}

// Is checks if err wraps a BriefError with the given code.
func Is(err error, code ErrorCode) bool {
	if bErr, ok := As(err); ok {
		return bErr.Code == code
	}
	return false
}

// IsGeneration reports whether err is a generation failure, including rate limiting.
func IsGeneration(err error) bool {
	return Is(err, ErrGeneration) || Is(err, ErrRateLimited)
}

// RetryAfter returns the retry hint in seconds carried by a RateLimited error.
func RetryAfter(err error) int {
	bErr, ok := As(err)
	if !ok || bErr.Code != ErrRateLimited || bErr.Details == nil {
		return 0
	}
	if v, ok := bErr.Details["retry_after_seconds"].(int); ok {
		return v
	}
	return 0
}
