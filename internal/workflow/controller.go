// Package workflow runs the summary pipeline for a single video: metadata,
// transcript, summary, page, notification. Stages run sequentially; a stage
// failure ends the job with a stage-specific message.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/notion"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

// Stage identifies a pipeline phase for progress reporting and failure
// messages.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageMetadata   Stage = "fetching_metadata"
	StageTranscript Stage = "extracting_transcript"
	StageSummarize  Stage = "summarizing"
	StagePersist    Stage = "persisting"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// failureMessages are the user-facing texts for a job that died in a stage.
var failureMessages = map[Stage]string{
	StageMetadata:   "Could not fetch video information. The video may be private or deleted.",
	StageTranscript: "No subtitles available for this video, and the description is too short to work with.",
	StageSummarize:  "The summarizer could not process this video. Please try again later.",
	StagePersist:    "The summary was generated but could not be saved.",
}

// FailureMessage returns the user-facing text for a failed stage.
func FailureMessage(stage Stage) string {
	if msg, ok := failureMessages[stage]; ok {
		return msg
	}

	return "Something went wrong while processing this video."
}

// Notifier receives job lifecycle events. The interactive bot edits a
// progress message; the batch worker sends chat messages.
type Notifier interface {
	Progress(ctx context.Context, stage Stage)
	Succeeded(ctx context.Context, outcome Outcome)
	Failed(ctx context.Context, stage Stage, message string)
}

// Job is one video to process.
type Job struct {
	VideoID string
	Style   summarize.Style

	// Model optionally overrides the primary summarizer model.
	Model string

	// DatabaseID optionally routes the page to a chat-specific database.
	DatabaseID string

	// RequesterNote is recorded on the page for traceability.
	RequesterNote string
}

// Outcome is the result of a completed job.
type Outcome struct {
	VideoID            string
	Info               youtube.VideoInfo
	TranscriptSource   transcript.Source
	TranscriptLanguage string
	Provider           string
	Model              string
	SummaryLength      int
	PageURL            string
	Persisted          bool
}

// ProvenanceTag renders the transcript origin with its language, e.g.
// "manual_en", or just the source when no language is known.
func (o Outcome) ProvenanceTag() string {
	if o.TranscriptLanguage == "" {
		return string(o.TranscriptSource)
	}

	return string(o.TranscriptSource) + "_" + o.TranscriptLanguage
}

// MetadataFetcher provides video metadata.
type MetadataFetcher interface {
	Fetch(ctx context.Context, videoID string) (youtube.VideoInfo, bool)
}

// TranscriptResolver provides subtitle text.
type TranscriptResolver interface {
	Resolve(ctx context.Context, videoID string) transcript.Result
}

// Summarizer converts a transcript into a document.
type Summarizer interface {
	Summarize(ctx context.Context, style summarize.Style, model string, info youtube.VideoInfo, tr transcript.Result) (summarize.Outcome, error)
}

// PageWriter persists documents.
type PageWriter interface {
	Enabled() bool
	Save(ctx context.Context, input notion.PageInput) (notion.PageRef, bool)
}

// descriptionFallbackMin is the minimum description length that can stand in
// for a missing transcript.
const descriptionFallbackMin = 100

// Controller orchestrates the pipeline stages.
type Controller struct {
	metadata   MetadataFetcher
	transcript TranscriptResolver
	summarizer Summarizer
	pages      PageWriter
	inflight   *InFlight
	logger     *zerolog.Logger
}

// NewController wires the pipeline dependencies.
func NewController(
	metadata MetadataFetcher,
	resolver TranscriptResolver,
	summarizer Summarizer,
	pages PageWriter,
	logger *zerolog.Logger,
) *Controller {
	return &Controller{
		metadata:   metadata,
		transcript: resolver,
		summarizer: summarizer,
		pages:      pages,
		inflight:   NewInFlight(),
		logger:     logger,
	}
}

// Process runs one job end to end. Duplicate requests for a video already in
// flight return ErrAlreadyProcessing without notifying. A stage failure
// notifies with the stage's message and returns an error naming the stage.
func (c *Controller) Process(ctx context.Context, job Job, notifier Notifier) (outcome Outcome, err error) {
	if !c.inflight.Begin(job.VideoID) {
		observability.DuplicatesSkipped.Inc()

		return Outcome{}, fmt.Errorf("%w: %s", apperrors.ErrAlreadyProcessing, job.VideoID)
	}
	defer c.inflight.End(job.VideoID)

	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Str("video_id", job.VideoID).Msg("recovered from pipeline panic")
			notifier.Failed(ctx, StageFailed, FailureMessage(StageFailed))
			observability.JobsProcessed.WithLabelValues("panic").Inc()

			err = fmt.Errorf("pipeline panic: %v", r)
		}
	}()

	notifier.Progress(ctx, StageMetadata)

	info, ok := c.metadata.Fetch(ctx, job.VideoID)
	if !ok {
		return Outcome{}, c.fail(ctx, notifier, job, StageMetadata)
	}

	notifier.Progress(ctx, StageTranscript)

	tr := c.transcript.Resolve(ctx, job.VideoID)
	if tr.Empty() {
		tr = descriptionFallback(info)
	}

	if tr.Empty() {
		return Outcome{}, c.fail(ctx, notifier, job, StageTranscript)
	}

	notifier.Progress(ctx, StageSummarize)

	summary, err := c.summarizer.Summarize(ctx, job.Style, job.Model, info, tr)
	if err != nil {
		c.logger.Error().Err(err).Str("video_id", job.VideoID).Msg("summarization failed")

		return Outcome{}, c.fail(ctx, notifier, job, StageSummarize)
	}

	outcome = Outcome{
		VideoID:            job.VideoID,
		Info:               info,
		TranscriptSource:   tr.Source,
		TranscriptLanguage: tr.Language,
		Provider:           summary.Provider,
		Model:              summary.Model,
		SummaryLength:      len(summary.Text),
	}

	if c.pages.Enabled() {
		notifier.Progress(ctx, StagePersist)

		ref, saved := c.pages.Save(ctx, notion.PageInput{
			Title:         info.Title,
			SourceURL:     info.URL,
			Markdown:      summary.Text,
			RequesterNote: job.RequesterNote,
			DatabaseID:    job.DatabaseID,
		})
		if !saved {
			return Outcome{}, c.fail(ctx, notifier, job, StagePersist)
		}

		outcome.PageURL = ref.URL
		outcome.Persisted = true
	}

	notifier.Succeeded(ctx, outcome)

	observability.JobsProcessed.WithLabelValues("ok").Inc()
	observability.JobDuration.Observe(time.Since(start).Seconds())

	c.logger.Info().
		Str("video_id", job.VideoID).
		Str("transcript_source", string(tr.Source)).
		Str("provider", summary.Provider).
		Int("summary_chars", len(summary.Text)).
		Bool("persisted", outcome.Persisted).
		Msg("job completed")

	return outcome, nil
}

func (c *Controller) fail(ctx context.Context, notifier Notifier, job Job, stage Stage) error {
	notifier.Failed(ctx, stage, FailureMessage(stage))

	observability.JobsProcessed.WithLabelValues("failed").Inc()
	observability.JobStageFailures.WithLabelValues(string(stage)).Inc()

	c.logger.Warn().Str("video_id", job.VideoID).Str("stage", string(stage)).Msg("job failed")

	return fmt.Errorf("stage %s failed for video %s", stage, job.VideoID)
}

// descriptionFallback turns a sufficiently long video description into a
// last-resort transcript.
func descriptionFallback(info youtube.VideoInfo) transcript.Result {
	if len(info.Description) <= descriptionFallbackMin {
		return transcript.Result{}
	}

	return transcript.Result{Text: info.Description, Source: transcript.SourceDescription}
}
