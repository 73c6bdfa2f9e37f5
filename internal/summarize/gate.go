package summarize

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

// PrimaryFactory builds a primary provider bound to a model. The gate caches
// the result per model, so channel overrides reuse instances.
type PrimaryFactory func(ctx context.Context, model string) (Provider, error)

// Outcome is a successful summarization with its attribution.
type Outcome struct {
	Text     string
	Provider string
	Model    string
}

// Gate runs the two-tier provider strategy: the free primary first, the paid
// fallback at most once when the primary fails with a retryable error.
type Gate struct {
	newPrimary   PrimaryFactory
	fallback     Provider
	defaultModel string
	logger       *zerolog.Logger

	mu        sync.Mutex
	primaries map[string]Provider
}

// NewGate creates a summarizer gate. fallback may be an unavailable provider;
// the gate then fails when the primary does.
func NewGate(newPrimary PrimaryFactory, fallback Provider, defaultModel string, logger *zerolog.Logger) *Gate {
	return &Gate{
		newPrimary:   newPrimary,
		fallback:     fallback,
		defaultModel: defaultModel,
		logger:       logger,
		primaries:    make(map[string]Provider),
	}
}

// Summarize renders the style's prompts and runs the provider chain. model
// overrides the default primary model when non-empty.
func (g *Gate) Summarize(ctx context.Context, style Style, model string, info youtube.VideoInfo, tr transcript.Result) (Outcome, error) {
	if !ValidStyle(style) {
		return Outcome{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownStyle, style)
	}

	primary, err := g.primaryFor(ctx, model)
	if err != nil {
		return Outcome{}, err
	}

	outcome, primaryErr := g.run(ctx, primary, style, info, tr)
	if primaryErr == nil {
		return outcome, nil
	}

	g.logger.Warn().
		Err(primaryErr).
		Str("provider", primary.Name()).
		Str("model", primary.Model()).
		Str("video_id", info.ID).
		Msg("primary summarizer failed")

	if !shouldFallback(primaryErr) || g.fallback == nil || !g.fallback.Available() {
		return Outcome{}, fmt.Errorf("%w: %w", apperrors.ErrAllProvidersFailed, primaryErr)
	}

	observability.SummaryFallbacks.Inc()

	outcome, fallbackErr := g.run(ctx, g.fallback, style, info, tr)
	if fallbackErr != nil {
		return Outcome{}, fmt.Errorf("%w: primary: %w; fallback: %w", apperrors.ErrAllProvidersFailed, primaryErr, fallbackErr)
	}

	return outcome, nil
}

func (g *Gate) run(ctx context.Context, provider Provider, style Style, info youtube.VideoInfo, tr transcript.Result) (Outcome, error) {
	req, err := BuildRequest(style, info, tr, provider.CharBudget())
	if err != nil {
		return Outcome{}, err
	}

	text, err := provider.Summarize(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Text: text, Provider: provider.Name(), Model: provider.Model()}, nil
}

// primaryFor returns the cached primary for a model, creating it on first use.
func (g *Gate) primaryFor(ctx context.Context, model string) (Provider, error) {
	if model == "" {
		model = g.defaultModel
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.primaries[model]; ok {
		return p, nil
	}

	p, err := g.newPrimary(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("creating primary summarizer for model %s: %w", model, err)
	}

	g.primaries[model] = p

	return p, nil
}

// shouldFallback reports whether the paid provider gets a chance. Input the
// primary rejected as invalid will be rejected everywhere.
func shouldFallback(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable()
	}

	return true
}
