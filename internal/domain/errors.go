package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// handler layer without per-handler switch statements.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a session or resource was not found.
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input.
	ValidationError struct {
		Message string
	}

	// EmptyTranscriptError rejects an evaluation request whose transcript
	// has zero turns. Raised before any upstream call is attempted.
	EmptyTranscriptError struct{}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *EmptyTranscriptError) Error() string {
	return "conversation transcript is empty"
}

func (e *NotFoundError) StatusCode() int        { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *EmptyTranscriptError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Unwrap() error   { return ErrNotFound }
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Sentinel errors - use with errors.Is().
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")

	// ErrTransportClosed marks an outbound send attempted while the data
	// channel mirror was not open. By contract such sends are dropped and
	// logged, never fatal.
	ErrTransportClosed = errors.New("realtime transport is not open")
)

// MalformedToolCallError marks one tool-call candidate whose argument
// payload could not be parsed or validated. Recoverable: the call is
// dropped and the surrounding batch continues.
type MalformedToolCallError struct {
	CallID string
	Cause  error
}

func (e *MalformedToolCallError) Error() string {
	return fmt.Sprintf("malformed tool call %q: %v", e.CallID, e.Cause)
}

func (e *MalformedToolCallError) Unwrap() error { return e.Cause }

// UpstreamCallError marks a network or HTTP failure calling the remote
// model service. The caller must surface a zero-valued fallback
// evaluation, never a raw error, to the UI.
type UpstreamCallError struct {
	Operation string
	Cause     error
}

func (e *UpstreamCallError) Error() string {
	return fmt.Sprintf("upstream %s call failed: %v", e.Operation, e.Cause)
}

func (e *UpstreamCallError) Unwrap() error   { return e.Cause }
func (e *UpstreamCallError) StatusCode() int { return http.StatusBadGateway }

// UpstreamSchemaError marks a remote model response that could not be
// parsed into the requested output schema. Same fallback contract as
// UpstreamCallError.
type UpstreamSchemaError struct {
	Cause error
}

func (e *UpstreamSchemaError) Error() string {
	return fmt.Sprintf("upstream response does not match output schema: %v", e.Cause)
}

func (e *UpstreamSchemaError) Unwrap() error   { return e.Cause }
func (e *UpstreamSchemaError) StatusCode() int { return http.StatusBadGateway }
