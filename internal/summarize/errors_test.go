package summarize

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"googleapi forbidden", &googleapi.Error{Code: http.StatusForbidden}, KindAuth},
		{"googleapi quota", &googleapi.Error{Code: http.StatusTooManyRequests}, KindQuota},
		{"googleapi not found", &googleapi.Error{Code: http.StatusNotFound}, KindNotFound},
		{"googleapi bad request", &googleapi.Error{Code: http.StatusBadRequest}, KindInvalidInput},
		{"googleapi server error", &googleapi.Error{Code: http.StatusBadGateway}, KindUnavailable},
		{"wrapped googleapi", fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusNotFound}), KindNotFound},
		{"openai unauthorized", &openai.APIError{HTTPStatusCode: http.StatusUnauthorized}, KindAuth},
		{"openai quota", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, KindQuota},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), KindQuota},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), KindUnavailable},
		{"plain error", errors.New("something"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindOf(tt.err); got != tt.want {
				t.Errorf("kindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProviderErrorRetryable(t *testing.T) {
	invalid := &ProviderError{Provider: "gemini", Kind: KindInvalidInput, Err: errors.New("bad input")}
	if invalid.Retryable() {
		t.Error("invalid input should not be retryable")
	}

	quota := &ProviderError{Provider: "gemini", Kind: KindQuota, Err: errors.New("quota")}
	if !quota.Retryable() {
		t.Error("quota should be retryable on another provider")
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := &googleapi.Error{Code: http.StatusNotFound}

	err := classify("gemini", inner)
	if !errors.Is(err, inner) {
		t.Error("classify should preserve the wrapped error")
	}

	if err.Kind != KindNotFound {
		t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
	}
}
