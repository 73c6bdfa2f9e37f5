// Package worker drains the summary job queue in batches. Jobs are queued by
// an external producer (or a previous bot run) and each one runs the same
// pipeline the interactive bot uses, with results written back to the job row
// and announced to the requesting chat.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
	loop "github.com/tubenotion/summary-bot/internal/platform/worker"
	"github.com/tubenotion/summary-bot/internal/storage"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/videoid"
	"github.com/tubenotion/summary-bot/internal/workflow"
)

const (
	workerName      = "summary-queue"
	jobTimeout      = 10 * time.Minute
	backlogInterval = time.Minute

	// staleAfter is how long a claimed job may sit in processing before a
	// reclaim pass assumes its worker died and re-pends it. It exceeds
	// jobTimeout so a live job can never be reclaimed mid-run.
	staleAfter      = jobTimeout + 5*time.Minute
	reclaimInterval = 5 * time.Minute
)

// JobStore is the queue persistence the processor needs.
type JobStore interface {
	ClaimPending(ctx context.Context, limit int) ([]storage.SummaryJob, error)
	UpdateJobStage(ctx context.Context, id, stage string) error
	CompleteJob(ctx context.Context, id string, result storage.JobResult) error
	FailJob(ctx context.Context, id, errMsg string) error
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
	CountPending(ctx context.Context) (int64, error)
}

// Sender delivers a completion or failure notice to the chat that queued the
// job. The bot's Telegram API satisfies it in production.
type Sender interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}

// Announcer renders the success message for a finished job.
type Announcer func(outcome workflow.Outcome) string

// Processor claims pending jobs and runs them through the pipeline.
type Processor struct {
	store        JobStore
	controller   *workflow.Controller
	sender       Sender
	announce     Announcer
	batchSize    int
	pollInterval time.Duration
	logger       *zerolog.Logger
}

func New(
	store JobStore,
	controller *workflow.Controller,
	sender Sender,
	announce Announcer,
	batchSize int,
	pollInterval time.Duration,
	logger *zerolog.Logger,
) *Processor {
	return &Processor{
		store:        store,
		controller:   controller,
		sender:       sender,
		announce:     announce,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run polls the queue until the context is canceled.
func (p *Processor) Run(ctx context.Context) error {
	return loop.Loop(ctx, loop.Config{
		Name:         workerName,
		PollInterval: p.pollInterval,
		Process:      p.ProcessBatch,
		PeriodicTasks: []loop.PeriodicTask{
			{Name: "queue-backlog", Interval: backlogInterval, Run: p.reportBacklog},
			{Name: "reclaim-stale", Interval: reclaimInterval, Run: p.reclaimStale},
		},
		Logger: p.logger,
	})
}

// ProcessBatch claims up to batchSize pending jobs and runs them one at a
// time. Sequential execution keeps one worker instance from hammering the
// summarization APIs; scale out with more instances instead.
func (p *Processor) ProcessBatch(ctx context.Context) error {
	jobs, err := p.store.ClaimPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	p.logger.Info().Int("jobs", len(jobs)).Msg("claimed job batch")

	start := time.Now()

	for _, job := range jobs {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		p.processJob(ctx, job)
	}

	observability.QueueBatchDuration.Observe(time.Since(start).Seconds())

	return nil
}

func (p *Processor) processJob(ctx context.Context, job storage.SummaryJob) {
	defer loop.RecoverPanic(p.logger, "process job "+job.ID)

	videoID := job.VideoID
	if videoID == "" {
		ids := videoid.Detect(job.SourceURL)
		if len(ids) == 0 {
			p.finishFailed(ctx, job, "no YouTube video found in source URL")

			return
		}

		videoID = ids[0]
	}

	style := summarize.Style(job.Style)
	if style == "" {
		style = summarize.DefaultStyle
	}

	notifier := &jobNotifier{processor: p, job: job}

	err := loop.RunWithTimeout(ctx, jobTimeout, func(ctx context.Context) error {
		_, err := p.controller.Process(ctx, workflow.Job{
			VideoID:       videoID,
			Style:         style,
			Model:         job.Model,
			DatabaseID:    job.DatabaseID,
			RequesterNote: job.Requester,
		}, notifier)

		return err
	})

	// Stage failures are recorded by the notifier. Duplicates bypass it, so
	// the job row has to be closed out here.
	if err != nil && apperrors.Is(err, apperrors.ErrAlreadyProcessing) {
		p.finishFailed(ctx, job, "video is already being processed")
	}
}

func (p *Processor) finishFailed(ctx context.Context, job storage.SummaryJob, reason string) {
	if err := p.store.FailJob(ctx, job.ID, reason); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("failed to mark job failed")
	}

	p.notifyChat(ctx, job.ChatID, "❌ "+reason)
}

func (p *Processor) notifyChat(ctx context.Context, chatID int64, text string) {
	if p.sender == nil || chatID == 0 {
		return
	}

	if err := p.sender.SendHTML(ctx, chatID, text); err != nil {
		p.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to notify chat")
	}
}

// reclaimStale re-pends processing jobs abandoned by a worker that died
// mid-run, so they are picked up by a later batch.
func (p *Processor) reclaimStale(ctx context.Context) {
	n, err := p.store.ReclaimStale(ctx, staleAfter)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to reclaim stale jobs")

		return
	}

	if n > 0 {
		p.logger.Info().Int64("jobs", n).Msg("reclaimed stale jobs")
	}
}

func (p *Processor) reportBacklog(ctx context.Context) {
	n, err := p.store.CountPending(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to count pending jobs")

		return
	}

	observability.QueueBacklog.Set(float64(n))
}

// jobNotifier maps pipeline stage events onto job row updates and chat
// notices.
type jobNotifier struct {
	processor *Processor
	job       storage.SummaryJob
}

var _ workflow.Notifier = (*jobNotifier)(nil)

func (n *jobNotifier) Progress(ctx context.Context, stage workflow.Stage) {
	n.processor.logger.Debug().Str("job_id", n.job.ID).Str("stage", string(stage)).Msg("job progress")

	// The stage survives a worker crash, so an operator can see how far a
	// reclaimed job got.
	if err := n.processor.store.UpdateJobStage(ctx, n.job.ID, string(stage)); err != nil {
		n.processor.logger.Warn().Err(err).Str("job_id", n.job.ID).Msg("failed to persist job stage")
	}
}

func (n *jobNotifier) Succeeded(ctx context.Context, outcome workflow.Outcome) {
	result := storage.JobResult{
		PageURL:          outcome.PageURL,
		SummaryLength:    outcome.SummaryLength,
		TranscriptSource: outcome.ProvenanceTag(),
	}

	if err := n.processor.store.CompleteJob(ctx, n.job.ID, result); err != nil {
		n.processor.logger.Error().Err(err).Str("job_id", n.job.ID).Msg("failed to mark job completed")
	}

	if n.processor.announce != nil {
		n.processor.notifyChat(ctx, n.job.ChatID, n.processor.announce(outcome))
	}
}

func (n *jobNotifier) Failed(ctx context.Context, stage workflow.Stage, message string) {
	if err := n.processor.store.FailJob(ctx, n.job.ID, fmt.Sprintf("%s: %s", stage, message)); err != nil {
		n.processor.logger.Error().Err(err).Str("job_id", n.job.ID).Msg("failed to mark job failed")
	}

	n.processor.notifyChat(ctx, n.job.ChatID, "❌ "+message)
}
