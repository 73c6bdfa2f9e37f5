package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tubenotion/summary-bot/internal/config"
	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/platform/observability"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/videoid"
	"github.com/tubenotion/summary-bot/internal/workflow"
)

const updateTimeout = 60

// Bot watches configured chats for YouTube links and runs the summary
// pipeline for each one, reporting progress by editing a status message.
type Bot struct {
	cfg        *config.Config
	routing    *config.Routing
	controller *workflow.Controller
	queue      JobQueue
	api        *tgbotapi.BotAPI
	logger     *zerolog.Logger
}

func New(cfg *config.Config, routing *config.Routing, controller *workflow.Controller, queue JobQueue, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("telegram api: %w", err)
	}

	return &Bot{
		cfg:        cfg,
		routing:    routing,
		controller: controller,
		queue:      queue,
		api:        api,
		logger:     logger,
	}, nil
}

func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info().Str("username", b.api.Self.UserName).Msg("bot started")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeout

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Message == nil {
				continue
			}

			// Each message runs off the update loop so a long summarization
			// never blocks other chats. Duplicate links are caught by the
			// controller's in-flight set.
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if b.routing.IsBlocked(chatID) {
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)

		return
	}

	ids := videoid.Detect(MessageText(msg))
	if len(ids) == 0 {
		return
	}

	observability.LinksDetected.Add(float64(len(ids)))
	b.logger.Info().Int64("chat_id", chatID).Int("links", len(ids)).Msg("detected video links")

	route, ok := b.routing.Lookup(chatID)
	if !ok {
		b.reply(msg, fmt.Sprintf(
			"This chat is not set up for summaries yet. Add chat ID <code>%d</code> to the channel config to enable it.",
			chatID,
		))

		return
	}

	style := summarize.Style(route.Style)
	if style == "" {
		style = summarize.DefaultStyle
	}

	for i, id := range ids {
		if i > 0 && b.cfg.MultiLinkPause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.cfg.MultiLinkPause):
			}
		}

		b.processLink(ctx, msg, id, route, style)
	}
}

func (b *Bot) processLink(ctx context.Context, msg *tgbotapi.Message, videoID string, route config.ChannelRoute, style summarize.Style) {
	status := b.newStatus(msg.Chat.ID, msg.MessageID, videoID)

	job := workflow.Job{
		VideoID:       videoID,
		Style:         style,
		Model:         route.Model,
		DatabaseID:    route.DatabaseID,
		RequesterNote: RequesterName(msg),
	}

	_, err := b.controller.Process(ctx, job, status)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrAlreadyProcessing) {
			status.edit(ctx, "⏳ This video is already being processed.")
		}

		b.logger.Warn().Err(err).Str("video_id", videoID).Msg("link processing failed")
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error().Err(err).Msg("failed to send reply")
	}
}
