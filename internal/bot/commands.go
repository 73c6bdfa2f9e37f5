package bot

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/storage"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/videoid"
)

// JobQueue is the optional job persistence behind the /queue and /job
// commands. It is nil when the bot runs without Postgres.
type JobQueue interface {
	CreateJob(ctx context.Context, job storage.SummaryJob) (string, error)
	GetJob(ctx context.Context, id string) (storage.SummaryJob, error)
}

const helpText = `Send a message containing a YouTube link and I will summarize it.

Commands:
/queue &lt;links&gt; — queue links for the batch worker instead of processing now
/job &lt;id&gt; — show the status of a queued job
/help — this message`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	b.logger.Info().Str("command", msg.Command()).Int64("chat_id", msg.Chat.ID).Msg("Handling command")

	switch msg.Command() {
	case "start", "help":
		b.reply(msg, helpText)
	case "queue":
		b.handleQueue(ctx, msg)
	case "job":
		b.handleJobStatus(ctx, msg)
	default:
		b.reply(msg, "Unknown command")
	}
}

func (b *Bot) handleQueue(ctx context.Context, msg *tgbotapi.Message) {
	if b.queue == nil {
		b.reply(msg, "Job queue is not configured on this instance.")

		return
	}

	route, ok := b.routing.Lookup(msg.Chat.ID)
	if !ok {
		b.reply(msg, fmt.Sprintf(
			"This chat is not set up for summaries yet. Add chat ID <code>%d</code> to the channel config to enable it.",
			msg.Chat.ID,
		))

		return
	}

	ids := videoid.Detect(msg.CommandArguments())
	if len(ids) == 0 {
		b.reply(msg, "No YouTube links found. Usage: /queue <link> [more links]")

		return
	}

	style := route.Style
	if style == "" {
		style = string(summarize.DefaultStyle)
	}

	queued := 0

	for _, id := range ids {
		_, err := b.queue.CreateJob(ctx, storage.SummaryJob{
			SourceURL:  videoid.WatchURL(id),
			VideoID:    id,
			ChatID:     msg.Chat.ID,
			Style:      style,
			Model:      route.Model,
			DatabaseID: route.DatabaseID,
			Requester:  RequesterName(msg),
		})
		if err != nil {
			b.logger.Error().Err(err).Str("video_id", id).Msg("failed to queue job")

			continue
		}

		queued++
	}

	b.reply(msg, fmt.Sprintf("Queued %d of %d links for the batch worker.", queued, len(ids)))
}

func (b *Bot) handleJobStatus(ctx context.Context, msg *tgbotapi.Message) {
	if b.queue == nil {
		b.reply(msg, "Job queue is not configured on this instance.")

		return
	}

	id := msg.CommandArguments()
	if id == "" {
		b.reply(msg, "Usage: /job <id>")

		return
	}

	job, err := b.queue.GetJob(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrJobNotFound) {
			b.reply(msg, "No job with that ID.")

			return
		}

		b.logger.Error().Err(err).Str("job_id", id).Msg("failed to load job")
		b.reply(msg, "Could not load the job, try again later.")

		return
	}

	b.reply(msg, formatJobStatus(job))
}

func formatJobStatus(job storage.SummaryJob) string {
	text := fmt.Sprintf("Job <code>%s</code>: <b>%s</b>\n%s", html.EscapeString(job.ID), job.Status, html.EscapeString(job.SourceURL))

	switch job.Status {
	case storage.JobStatusProcessing:
		if job.Stage != "" {
			text += "\n⏳ stage: " + html.EscapeString(job.Stage)
		}
	case storage.JobStatusCompleted:
		if job.PageURL != "" {
			text += fmt.Sprintf("\n🔗 <a href=%q>Open in Notion</a>", job.PageURL)
		}

		if job.TranscriptSource != "" {
			text += "\n📜 transcript: " + job.TranscriptSource
		}
	case storage.JobStatusFailed:
		if job.Error != "" {
			text += "\n❌ " + html.EscapeString(job.Error)
		}
	}

	return text
}
