package summarize

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies provider failures so callers can branch on the cause
// without inspecting error strings.
type ErrorKind string

const (
	KindAuth         ErrorKind = "auth"
	KindQuota        ErrorKind = "quota"
	KindNotFound     ErrorKind = "not_found"
	KindInvalidInput ErrorKind = "invalid_input"
	KindUnavailable  ErrorKind = "unavailable"
	KindUnknown      ErrorKind = "unknown"
)

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a failure of this kind could succeed on another
// provider. Invalid input fails everywhere; quota and availability do not.
func (e *ProviderError) Retryable() bool {
	return e.Kind != KindInvalidInput
}

// classify maps transport-level errors onto an ErrorKind using the typed
// errors the client libraries return.
func classify(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kindOf(err), Err: err}
}

func kindOf(err error) ErrorKind {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return kindOfHTTPStatus(apiErr.Code)
	}

	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return kindOfHTTPStatus(oaErr.HTTPStatusCode)
	}

	if st, ok := status.FromError(err); ok && st.Code() != codes.Unknown {
		return kindOfGRPCCode(st.Code())
	}

	return KindUnknown
}

func kindOfHTTPStatus(code int) ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindQuota
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return KindInvalidInput
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUnavailable
	default:
		return KindUnknown
	}
}

func kindOfGRPCCode(code codes.Code) ErrorKind {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return KindAuth
	case codes.ResourceExhausted:
		return KindQuota
	case codes.NotFound:
		return KindNotFound
	case codes.InvalidArgument, codes.FailedPrecondition:
		return KindInvalidInput
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
		return KindUnavailable
	default:
		return KindUnknown
	}
}
