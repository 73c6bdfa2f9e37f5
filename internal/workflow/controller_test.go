package workflow

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/notion"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

type fakeMetadata struct {
	info youtube.VideoInfo
	ok   bool
}

func (f *fakeMetadata) Fetch(_ context.Context, _ string) (youtube.VideoInfo, bool) {
	return f.info, f.ok
}

type fakeResolver struct {
	result transcript.Result
	block  chan struct{} // when set, Resolve waits until closed
}

func (f *fakeResolver) Resolve(_ context.Context, _ string) transcript.Result {
	if f.block != nil {
		<-f.block
	}

	return f.result
}

type fakeSummarizer struct {
	outcome summarize.Outcome
	err     error
}

func (f *fakeSummarizer) Summarize(_ context.Context, _ summarize.Style, _ string, _ youtube.VideoInfo, _ transcript.Result) (summarize.Outcome, error) {
	return f.outcome, f.err
}

type fakeWriter struct {
	enabled bool
	ref     notion.PageRef
	ok      bool
}

func (f *fakeWriter) Enabled() bool { return f.enabled }

func (f *fakeWriter) Save(_ context.Context, _ notion.PageInput) (notion.PageRef, bool) {
	return f.ref, f.ok
}

type recordingNotifier struct {
	mu       sync.Mutex
	stages   []Stage
	outcome  *Outcome
	failed   Stage
	failText string
}

func (n *recordingNotifier) Progress(_ context.Context, stage Stage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stages = append(n.stages, stage)
}

func (n *recordingNotifier) Succeeded(_ context.Context, outcome Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcome = &outcome
}

func (n *recordingNotifier) Failed(_ context.Context, stage Stage, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = stage
	n.failText = message
}

func happyController() (*Controller, *recordingNotifier) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ", Title: "Video", URL: "https://youtu.be/dQw4w9WgXcQ"}, ok: true},
		&fakeResolver{result: transcript.Result{Text: strings.Repeat("words ", 50), Source: transcript.SourceManual, Language: "en"}},
		&fakeSummarizer{outcome: summarize.Outcome{Text: "# Summary", Provider: "gemini", Model: "m"}},
		&fakeWriter{enabled: true, ref: notion.PageRef{ID: "p1", URL: "https://notion.example/p1"}, ok: true},
		&logger,
	)

	return c, &recordingNotifier{}
}

func testJob() Job {
	return Job{VideoID: "dQw4w9WgXcQ", Style: summarize.StyleArchive}
}

func TestProcessHappyPath(t *testing.T) {
	c, n := happyController()

	outcome, err := c.Process(context.Background(), testJob(), n)
	require.NoError(t, err)

	assert.Equal(t, "dQw4w9WgXcQ", outcome.VideoID)
	assert.Equal(t, transcript.SourceManual, outcome.TranscriptSource)
	assert.Equal(t, "en", outcome.TranscriptLanguage)
	assert.Equal(t, "manual_en", outcome.ProvenanceTag())
	assert.Equal(t, "gemini", outcome.Provider)
	assert.Equal(t, "https://notion.example/p1", outcome.PageURL)
	assert.True(t, outcome.Persisted)

	assert.Equal(t, []Stage{StageMetadata, StageTranscript, StageSummarize, StagePersist}, n.stages)
	require.NotNil(t, n.outcome)
	assert.Equal(t, Stage(""), n.failed)

	// job released after completion
	assert.Zero(t, c.inflight.Active())
}

func TestProcessMetadataFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{ok: false},
		&fakeResolver{},
		&fakeSummarizer{},
		&fakeWriter{},
		&logger,
	)
	n := &recordingNotifier{}

	_, err := c.Process(context.Background(), testJob(), n)
	require.Error(t, err)
	assert.Equal(t, StageMetadata, n.failed)
	assert.Equal(t, FailureMessage(StageMetadata), n.failText)
	assert.Zero(t, c.inflight.Active())
}

func TestProcessDescriptionFallback(t *testing.T) {
	logger := zerolog.Nop()
	longDescription := strings.Repeat("described content ", 20)
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ", Description: longDescription}, ok: true},
		&fakeResolver{result: transcript.Result{}},
		&fakeSummarizer{outcome: summarize.Outcome{Text: "summary", Provider: "gemini"}},
		&fakeWriter{enabled: false},
		&logger,
	)
	n := &recordingNotifier{}

	outcome, err := c.Process(context.Background(), testJob(), n)
	require.NoError(t, err)
	assert.Equal(t, transcript.SourceDescription, outcome.TranscriptSource)
}

func TestProcessShortDescriptionFails(t *testing.T) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ", Description: "too short"}, ok: true},
		&fakeResolver{result: transcript.Result{}},
		&fakeSummarizer{},
		&fakeWriter{},
		&logger,
	)
	n := &recordingNotifier{}

	_, err := c.Process(context.Background(), testJob(), n)
	require.Error(t, err)
	assert.Equal(t, StageTranscript, n.failed)
}

func TestProcessSummarizeFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ"}, ok: true},
		&fakeResolver{result: transcript.Result{Text: strings.Repeat("w ", 100), Source: transcript.SourceAuto}},
		&fakeSummarizer{err: apperrors.ErrAllProvidersFailed},
		&fakeWriter{},
		&logger,
	)
	n := &recordingNotifier{}

	_, err := c.Process(context.Background(), testJob(), n)
	require.Error(t, err)
	assert.Equal(t, StageSummarize, n.failed)
}

func TestProcessPersistFailure(t *testing.T) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ"}, ok: true},
		&fakeResolver{result: transcript.Result{Text: strings.Repeat("w ", 100), Source: transcript.SourceAuto}},
		&fakeSummarizer{outcome: summarize.Outcome{Text: "summary"}},
		&fakeWriter{enabled: true, ok: false},
		&logger,
	)
	n := &recordingNotifier{}

	_, err := c.Process(context.Background(), testJob(), n)
	require.Error(t, err)
	assert.Equal(t, StagePersist, n.failed)
}

func TestProcessWriterDisabledSucceedsWithoutPage(t *testing.T) {
	logger := zerolog.Nop()
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ"}, ok: true},
		&fakeResolver{result: transcript.Result{Text: strings.Repeat("w ", 100), Source: transcript.SourceAuto}},
		&fakeSummarizer{outcome: summarize.Outcome{Text: "summary", Provider: "gemini"}},
		&fakeWriter{enabled: false},
		&logger,
	)
	n := &recordingNotifier{}

	outcome, err := c.Process(context.Background(), testJob(), n)
	require.NoError(t, err)
	assert.False(t, outcome.Persisted)
	assert.Empty(t, outcome.PageURL)
	assert.NotContains(t, n.stages, StagePersist)
}

func TestProcessDuplicateRejected(t *testing.T) {
	logger := zerolog.Nop()
	block := make(chan struct{})
	c := NewController(
		&fakeMetadata{info: youtube.VideoInfo{ID: "dQw4w9WgXcQ"}, ok: true},
		&fakeResolver{result: transcript.Result{Text: strings.Repeat("w ", 100), Source: transcript.SourceAuto}, block: block},
		&fakeSummarizer{outcome: summarize.Outcome{Text: "summary"}},
		&fakeWriter{enabled: false},
		&logger,
	)

	first := &recordingNotifier{}
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, _ = c.Process(context.Background(), testJob(), first)
	}()

	// Wait until the first job holds the in-flight slot.
	for c.inflight.Active() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := &recordingNotifier{}

	_, err := c.Process(context.Background(), testJob(), second)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyProcessing))
	assert.Nil(t, second.outcome)

	close(block)
	<-done

	assert.Zero(t, c.inflight.Active())
}

func TestProvenanceTagWithoutLanguage(t *testing.T) {
	outcome := Outcome{TranscriptSource: transcript.SourceDescription}
	assert.Equal(t, "description", outcome.ProvenanceTag())

	outcome.TranscriptLanguage = "ko"
	assert.Equal(t, "description_ko", outcome.ProvenanceTag())
}

func TestFailureMessageFallback(t *testing.T) {
	assert.NotEmpty(t, FailureMessage(StageMetadata))
	assert.NotEmpty(t, FailureMessage(Stage("unmapped")))
}
