package transcript

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tubenotion/summary-bot/internal/platform/observability"
)

// Backend is a single transcript resolution strategy.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, videoID string) (Result, error)
}

// Resolver walks an ordered list of backends and returns the first usable
// transcript. Strategy errors are logged, never propagated: a video with no
// subtitles is a normal outcome.
type Resolver struct {
	backends []Backend
	logger   *zerolog.Logger
}

// NewResolver creates a resolver over the given backends, tried in order.
func NewResolver(logger *zerolog.Logger, backends ...Backend) *Resolver {
	return &Resolver{backends: backends, logger: logger}
}

// Resolve returns the first usable transcript, or an empty Result when every
// strategy comes up short.
func (r *Resolver) Resolve(ctx context.Context, videoID string) Result {
	for _, backend := range r.backends {
		if ctx.Err() != nil {
			return Result{}
		}

		result, err := backend.Fetch(ctx, videoID)
		if err != nil {
			r.logger.Debug().
				Err(err).
				Str("video_id", videoID).
				Str("strategy", backend.Name()).
				Msg("transcript strategy failed")

			continue
		}

		if !result.Usable() {
			r.logger.Debug().
				Str("video_id", videoID).
				Str("strategy", backend.Name()).
				Int("chars", len(result.Text)).
				Msg("transcript below usable threshold")

			continue
		}

		observability.TranscriptsResolved.WithLabelValues(string(result.Source)).Inc()

		return result
	}

	observability.TranscriptsResolved.WithLabelValues("none").Inc()

	return Result{}
}
