package summarize

import "context"

// Provider is a single summarization backend.
type Provider interface {
	// Name returns the provider identifier for logs and metrics.
	Name() string

	// Model returns the model the provider is bound to.
	Model() string

	// Available reports whether the provider is configured.
	Available() bool

	// CharBudget returns the maximum transcript size in characters the
	// provider accepts before truncation.
	CharBudget() int

	// Summarize runs one request and returns the Markdown document.
	// Failures are returned as *ProviderError.
	Summarize(ctx context.Context, req Request) (string, error)
}
