package summarize

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/transcript"
)

type fakeProvider struct {
	name      string
	model     string
	available bool
	text      string
	err       error
	calls     int
}

func (f *fakeProvider) Name() string    { return f.name }
func (f *fakeProvider) Model() string   { return f.model }
func (f *fakeProvider) Available() bool { return f.available }
func (f *fakeProvider) CharBudget() int { return 24000 }

func (f *fakeProvider) Summarize(_ context.Context, _ Request) (string, error) {
	f.calls++
	return f.text, f.err
}

func newTestGate(primary, fallback *fakeProvider) *Gate {
	logger := zerolog.Nop()
	factory := func(_ context.Context, model string) (Provider, error) {
		p := *primary
		p.model = model

		return &p, nil
	}

	return NewGate(factory, fallback, "default-model", &logger)
}

func usableTranscript() transcript.Result {
	return transcript.Result{Text: "spoken content", Source: transcript.SourceManual}
}

func TestGatePrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "gemini", available: true, text: "# Summary"}
	fallback := &fakeProvider{name: "openai", available: true, text: "fallback"}

	gate := newTestGate(primary, fallback)

	outcome, err := gate.Summarize(context.Background(), StyleArchive, "", testInfo(), usableTranscript())
	require.NoError(t, err)
	assert.Equal(t, "# Summary", outcome.Text)
	assert.Equal(t, "gemini", outcome.Provider)
	assert.Equal(t, "default-model", outcome.Model)
	assert.Zero(t, fallback.calls)
}

func TestGateFallsBackOnce(t *testing.T) {
	primary := &fakeProvider{
		name:      "gemini",
		available: true,
		err:       &ProviderError{Provider: "gemini", Kind: KindQuota, Err: apperrors.ErrEmptyResponse},
	}
	fallback := &fakeProvider{name: "openai", available: true, text: "fallback summary"}

	gate := newTestGate(primary, fallback)

	outcome, err := gate.Summarize(context.Background(), StyleArchive, "", testInfo(), usableTranscript())
	require.NoError(t, err)
	assert.Equal(t, "fallback summary", outcome.Text)
	assert.Equal(t, "openai", outcome.Provider)
	assert.Equal(t, 1, fallback.calls)
}

func TestGateBothFail(t *testing.T) {
	primary := &fakeProvider{
		name:      "gemini",
		available: true,
		err:       &ProviderError{Provider: "gemini", Kind: KindUnavailable, Err: apperrors.ErrEmptyResponse},
	}
	fallback := &fakeProvider{
		name:      "openai",
		available: true,
		err:       &ProviderError{Provider: "openai", Kind: KindUnavailable, Err: apperrors.ErrEmptyResponse},
	}

	gate := newTestGate(primary, fallback)

	_, err := gate.Summarize(context.Background(), StyleArchive, "", testInfo(), usableTranscript())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAllProvidersFailed))
	assert.Equal(t, 1, fallback.calls)
}

func TestGateSkipsFallbackOnInvalidInput(t *testing.T) {
	primary := &fakeProvider{
		name:      "gemini",
		available: true,
		err:       &ProviderError{Provider: "gemini", Kind: KindInvalidInput, Err: apperrors.ErrInvalidInput},
	}
	fallback := &fakeProvider{name: "openai", available: true, text: "should not run"}

	gate := newTestGate(primary, fallback)

	_, err := gate.Summarize(context.Background(), StyleArchive, "", testInfo(), usableTranscript())
	require.Error(t, err)
	assert.Zero(t, fallback.calls)
}

func TestGateSkipsUnavailableFallback(t *testing.T) {
	primary := &fakeProvider{
		name:      "gemini",
		available: true,
		err:       &ProviderError{Provider: "gemini", Kind: KindQuota, Err: apperrors.ErrEmptyResponse},
	}
	fallback := &fakeProvider{name: "openai", available: false}

	gate := newTestGate(primary, fallback)

	_, err := gate.Summarize(context.Background(), StyleArchive, "", testInfo(), usableTranscript())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAllProvidersFailed))
	assert.Zero(t, fallback.calls)
}

func TestGateRejectsUnknownStyle(t *testing.T) {
	primary := &fakeProvider{name: "gemini", available: true, text: "summary"}

	gate := newTestGate(primary, nil)

	_, err := gate.Summarize(context.Background(), Style("concise"), "", testInfo(), usableTranscript())
	assert.True(t, apperrors.Is(err, apperrors.ErrUnknownStyle))
	assert.Zero(t, primary.calls)
}

func TestGateCachesPrimaryPerModel(t *testing.T) {
	created := 0
	logger := zerolog.Nop()
	factory := func(_ context.Context, model string) (Provider, error) {
		created++
		return &fakeProvider{name: "gemini", model: model, available: true, text: "ok"}, nil
	}

	gate := NewGate(factory, nil, "default-model", &logger)

	ctx := context.Background()
	for _, model := range []string{"", "", "other-model", "other-model"} {
		_, err := gate.Summarize(ctx, StyleArchive, model, testInfo(), usableTranscript())
		require.NoError(t, err)
	}

	assert.Equal(t, 2, created)
}
