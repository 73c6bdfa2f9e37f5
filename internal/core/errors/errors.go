// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Video identification errors.
var (
	// ErrVideoNotFound indicates the video does not exist or is not visible.
	ErrVideoNotFound = errors.New("video not found")
)

// Client and connection errors.
var (
	// ErrClientDisabled indicates a client or feature is disabled.
	ErrClientDisabled = errors.New("client disabled")
)

// Response and parsing errors.
var (
	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")
)

// Transcript resolution errors.
var (
	// ErrNoTranscript indicates no strategy produced a usable transcript.
	ErrNoTranscript = errors.New("no transcript available")
)

// Summarization errors.
var (
	// ErrUnknownStyle indicates a summary style not present in the registry.
	ErrUnknownStyle = errors.New("unknown summary style")

	// ErrAllProvidersFailed indicates both the primary and fallback providers failed.
	ErrAllProvidersFailed = errors.New("all summary providers failed")
)

// Job queue errors.
var (
	// ErrJobNotFound indicates a job could not be found.
	ErrJobNotFound = errors.New("job not found")

	// ErrAlreadyProcessing indicates the same video is already in flight.
	ErrAlreadyProcessing = errors.New("video already processing")
)

// Validation errors.
var (
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
