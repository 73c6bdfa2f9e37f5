package transcript

import (
	"context"
	"fmt"
	"strings"

	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	"github.com/rs/zerolog"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
)

// APIBackend resolves transcripts through the transcript API endpoint. It
// cannot tell manual tracks from auto-generated ones, so it runs after the
// caption-track strategy as a second chance.
type APIBackend struct {
	api      *ytapi.YouTubeTranscriptApi
	language string
	logger   *zerolog.Logger
}

// NewAPIBackend creates the transcript-API strategy.
func NewAPIBackend(language string, logger *zerolog.Logger) *APIBackend {
	return &APIBackend{
		api:      ytapi.NewYouTubeTranscriptApi(),
		language: language,
		logger:   logger,
	}
}

// Name identifies the strategy in logs.
func (b *APIBackend) Name() string { return "transcript-api" }

// Fetch tries the preferred language, then English, then any language the
// video has.
func (b *APIBackend) Fetch(ctx context.Context, videoID string) (Result, error) {
	// The underlying client has no context support; honor cancellation at
	// the attempt boundary instead.
	attempts := [][]string{
		{b.language},
		{"en", "en-US", "en-GB"},
		nil, // any available language
	}

	var lastErr error

	for _, langs := range attempts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		transcript, err := b.api.GetTranscript(videoID, langs)
		if err != nil {
			lastErr = err
			continue
		}

		var lines []string

		for _, entry := range transcript.Entries {
			if line := strings.TrimSpace(entry.Text); line != "" {
				lines = append(lines, line)
			}
		}

		text := strings.Join(CollapseConsecutive(lines), " ")
		if text == "" {
			lastErr = apperrors.ErrEmptyResponse
			continue
		}

		b.logger.Debug().
			Str("video_id", videoID).
			Strs("requested_languages", langs).
			Int("chars", len(text)).
			Msg("transcript api resolved")

		return Result{Text: text, Source: SourceAPI, Language: firstLang(langs)}, nil
	}

	if lastErr != nil {
		return Result{}, fmt.Errorf("transcript api: %w", lastErr)
	}

	return Result{}, apperrors.ErrNoTranscript
}

func firstLang(langs []string) string {
	if len(langs) == 0 {
		return ""
	}

	return langs[0]
}
