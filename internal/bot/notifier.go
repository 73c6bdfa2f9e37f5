package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/videoid"
	"github.com/tubenotion/summary-bot/internal/workflow"
)

// stageTexts are the progress lines shown while a link is being processed.
var stageTexts = map[workflow.Stage]string{
	workflow.StageMetadata:   "🔍 Fetching video details…",
	workflow.StageTranscript: "📜 Extracting transcript…",
	workflow.StageSummarize:  "✍️ Writing summary…",
	workflow.StagePersist:    "📚 Saving to Notion…",
}

// status is the per-link progress message. It is created once when
// processing starts and edited in place as stages advance.
type status struct {
	bot       *Bot
	chatID    int64
	messageID int
	videoID   string
}

var _ workflow.Notifier = (*status)(nil)

func (b *Bot) newStatus(chatID int64, replyTo int, videoID string) *status {
	s := &status{bot: b, chatID: chatID, videoID: videoID}

	msg := tgbotapi.NewMessage(chatID, "⏳ Processing "+videoid.WatchURL(videoID))
	msg.ReplyToMessageID = replyTo
	msg.DisableWebPagePreview = true

	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error().Err(err).Str("video_id", videoID).Msg("failed to send status message")

		return s
	}

	s.messageID = sent.MessageID

	return s
}

func (s *status) Progress(ctx context.Context, stage workflow.Stage) {
	text, ok := stageTexts[stage]
	if !ok {
		return
	}

	s.edit(ctx, text)
}

func (s *status) Succeeded(ctx context.Context, outcome workflow.Outcome) {
	s.edit(ctx, FormatOutcome(outcome))
}

func (s *status) Failed(ctx context.Context, stage workflow.Stage, message string) {
	s.edit(ctx, "❌ "+message)
}

func (s *status) edit(_ context.Context, text string) {
	if s.messageID == 0 {
		return
	}

	edit := tgbotapi.NewEditMessageText(s.chatID, s.messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	if _, err := s.bot.api.Send(edit); err != nil {
		s.bot.logger.Warn().Err(err).Str("video_id", s.videoID).Msg("failed to edit status message")
	}
}

// FormatOutcome renders the completion message for a summarized video.
func FormatOutcome(outcome workflow.Outcome) string {
	info := outcome.Info

	var sb strings.Builder

	title := info.Title
	if title == "" {
		title = outcome.VideoID
	}

	fmt.Fprintf(&sb, "✅ <a href=%q><b>%s</b></a>\n", videoid.WatchURL(outcome.VideoID), html.EscapeString(title))

	var details []string

	if info.ChannelTitle != "" {
		details = append(details, "📺 "+html.EscapeString(info.ChannelTitle))
	}

	if info.Duration != "" {
		details = append(details, "⏱ "+info.Duration)
	}

	if info.ViewCount > 0 {
		details = append(details, "👁 "+FormatCount(info.ViewCount))
	}

	if len(details) > 0 {
		sb.WriteString(strings.Join(details, " · "))
		sb.WriteString("\n")
	}

	if outcome.TranscriptSource != transcript.SourceNone {
		fmt.Fprintf(&sb, "📜 transcript: %s\n", outcome.ProvenanceTag())
	}

	if outcome.Persisted && outcome.PageURL != "" {
		fmt.Fprintf(&sb, "🔗 <a href=%q>Open in Notion</a>", outcome.PageURL)
	} else {
		sb.WriteString("🔗 summary not persisted")
	}

	return sb.String()
}

// FormatCount groups digits by thousands for readability.
func FormatCount(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}

	var sb strings.Builder

	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}

	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteString(",")
		}

		sb.WriteString(s[i : i+3])
	}

	return sb.String()
}
