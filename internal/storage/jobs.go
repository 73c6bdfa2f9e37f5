package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
)

// SummaryJob is one queued summarization request.
type SummaryJob struct {
	ID               string
	SourceURL        string
	VideoID          string
	ChatID           int64
	Style            string
	Model            string
	DatabaseID       string
	Requester        string
	Status           string
	Stage            string
	Error            string
	PageURL          string
	SummaryLength    int
	TranscriptSource string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	StartedAt        time.Time
	CompletedAt      time.Time
}

// JobResult is what a finished job records alongside its status.
type JobResult struct {
	PageURL          string
	SummaryLength    int
	TranscriptSource string
}

const jobColumns = `id, source_url, video_id, chat_id, style, model, database_id, requester,
	status, stage, error, page_url, summary_length, transcript_source,
	created_at, updated_at, started_at, completed_at`

// CreateJob queues a new pending job and returns its ID.
func (db *DB) CreateJob(ctx context.Context, job SummaryJob) (string, error) {
	id := uuid.New().String()

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO summary_jobs (id, source_url, video_id, chat_id, style, model, database_id, requester, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		toUUID(id), job.SourceURL, toText(job.VideoID), job.ChatID,
		job.Style, toText(job.Model), toText(job.DatabaseID), toText(job.Requester),
		JobStatusPending,
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}

	return id, nil
}

// GetJob fetches a single job by ID.
func (db *DB) GetJob(ctx context.Context, id string) (SummaryJob, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM summary_jobs WHERE id = $1`, toUUID(id))

	job, err := scanJob(row)
	if err != nil {
		if apperrors.Is(err, pgx.ErrNoRows) {
			return SummaryJob{}, fmt.Errorf("%w: %s", apperrors.ErrJobNotFound, id)
		}

		return SummaryJob{}, fmt.Errorf("get job: %w", err)
	}

	return job, nil
}

// ClaimPending atomically moves up to limit pending jobs to processing and
// returns them. FOR UPDATE SKIP LOCKED lets multiple workers poll the same
// table without claiming the same job twice.
func (db *DB) ClaimPending(ctx context.Context, limit int) ([]SummaryJob, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin claim tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(ctx, `
		SELECT `+jobColumns+`
		FROM summary_jobs
		WHERE status = $1
		ORDER BY created_at
		LIMIT $2
		FOR UPDATE SKIP LOCKED`,
		JobStatusPending, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select pending jobs: %w", err)
	}

	jobs, err := scanJobs(rows)
	if err != nil {
		return nil, fmt.Errorf("scan pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil, tx.Commit(ctx)
	}

	ids := make([]pgtype.UUID, 0, len(jobs))
	for i := range jobs {
		ids = append(ids, toUUID(jobs[i].ID))
		jobs[i].Status = JobStatusProcessing
	}

	if _, err := tx.Exec(ctx, `
		UPDATE summary_jobs
		SET status = $1, started_at = now(), updated_at = now()
		WHERE id = ANY($2)`,
		JobStatusProcessing, ids,
	); err != nil {
		return nil, fmt.Errorf("mark jobs processing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit claim tx: %w", err)
	}

	return jobs, nil
}

// UpdateJobStage records the pipeline stage a processing job has reached.
func (db *DB) UpdateJobStage(ctx context.Context, id, stage string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE summary_jobs
		SET stage = $2, updated_at = now()
		WHERE id = $1`,
		toUUID(id), stage,
	)
	if err != nil {
		return fmt.Errorf("update job stage: %w", err)
	}

	return nil
}

// ReclaimStale re-pends processing jobs whose last update is older than the
// cutoff. A job only stays that long in processing when its worker died, so
// the next claim pass retries it from the start.
func (db *DB) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE summary_jobs
		SET status = $1, updated_at = now()
		WHERE status = $2 AND updated_at < $3`,
		JobStatusPending, JobStatusProcessing, time.Now().Add(-olderThan),
	)
	if err != nil {
		return 0, fmt.Errorf("reclaim stale jobs: %w", err)
	}

	return tag.RowsAffected(), nil
}

// CompleteJob marks a job done, recording what it produced.
func (db *DB) CompleteJob(ctx context.Context, id string, result JobResult) error {
	return db.finishJob(ctx, id, JobStatusCompleted, "", result)
}

// FailJob marks a job failed with the error text.
func (db *DB) FailJob(ctx context.Context, id, errMsg string) error {
	return db.finishJob(ctx, id, JobStatusFailed, errMsg, JobResult{})
}

func (db *DB) finishJob(ctx context.Context, id, status, errMsg string, result JobResult) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE summary_jobs
		SET status = $2, error = $3, page_url = $4, summary_length = $5, transcript_source = $6,
			completed_at = now(), updated_at = now()
		WHERE id = $1`,
		toUUID(id), status, toText(errMsg), toText(result.PageURL),
		result.SummaryLength, toText(result.TranscriptSource),
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrJobNotFound, id)
	}

	return nil
}

// CountPending returns the queue backlog size.
func (db *DB) CountPending(ctx context.Context) (int64, error) {
	var n int64

	err := db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM summary_jobs WHERE status = $1`, JobStatusPending,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pending jobs: %w", err)
	}

	return n, nil
}

func scanJob(row pgx.Row) (SummaryJob, error) {
	var (
		job                       SummaryJob
		id                        pgtype.UUID
		videoID, model, dbID      pgtype.Text
		requester, stage, jobErr  pgtype.Text
		pageURL, transcriptSource pgtype.Text
		summaryLength             pgtype.Int4
		startedAt, completedAt    pgtype.Timestamptz
	)

	err := row.Scan(
		&id, &job.SourceURL, &videoID, &job.ChatID, &job.Style, &model, &dbID, &requester,
		&job.Status, &stage, &jobErr, &pageURL, &summaryLength, &transcriptSource,
		&job.CreatedAt, &job.UpdatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return SummaryJob{}, err
	}

	job.ID = fromUUID(id)
	job.VideoID = fromText(videoID)
	job.Model = fromText(model)
	job.DatabaseID = fromText(dbID)
	job.Requester = fromText(requester)
	job.Stage = fromText(stage)
	job.Error = fromText(jobErr)
	job.PageURL = fromText(pageURL)
	job.TranscriptSource = fromText(transcriptSource)

	if summaryLength.Valid {
		job.SummaryLength = int(summaryLength.Int32)
	}

	if startedAt.Valid {
		job.StartedAt = startedAt.Time
	}

	if completedAt.Valid {
		job.CompletedAt = completedAt.Time
	}

	return job, nil
}

func scanJobs(rows pgx.Rows) ([]SummaryJob, error) {
	defer rows.Close()

	var jobs []SummaryJob

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}
