// Package youtube fetches video metadata from the YouTube Data API.
package youtube

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/videoid"
)

// VideoInfo is the metadata snapshot used by the pipeline and notifications.
type VideoInfo struct {
	ID              string
	URL             string
	Title           string
	ChannelTitle    string
	Description     string
	Duration        string
	DurationSeconds int
	ViewCount       uint64
	LikeCount       uint64
	ThumbnailURL    string
	PublishedAt     string
}

// Fetcher retrieves video metadata via the Data API v3.
type Fetcher struct {
	service *yt.Service
	logger  *zerolog.Logger
}

// NewFetcher creates a metadata fetcher. The API key is required; callers
// should not construct a Fetcher without one.
func NewFetcher(ctx context.Context, apiKey string, logger *zerolog.Logger) (*Fetcher, error) {
	service, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return &Fetcher{service: service, logger: logger}, nil
}

// Fetch returns the metadata for a video, or ok=false when the video is
// missing, private, or the API call fails. A failed fetch is logged and not
// retried; the caller decides whether the pipeline continues.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (VideoInfo, bool) {
	call := f.service.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx)

	resp, err := call.Do()
	if err != nil {
		f.logger.Warn().Err(err).Str("video_id", videoID).Msg("metadata fetch failed")

		return VideoInfo{}, false
	}

	if len(resp.Items) == 0 {
		f.logger.Warn().
			Err(fmt.Errorf("%w: %s", apperrors.ErrVideoNotFound, videoID)).
			Str("video_id", videoID).
			Msg("video not found or not visible")

		return VideoInfo{}, false
	}

	return fromAPIItem(resp.Items[0]), true
}

func fromAPIItem(item *yt.Video) VideoInfo {
	info := VideoInfo{
		ID:  item.Id,
		URL: videoid.WatchURL(item.Id),
	}

	if item.Snippet != nil {
		info.Title = item.Snippet.Title
		info.ChannelTitle = item.Snippet.ChannelTitle
		info.Description = item.Snippet.Description
		info.PublishedAt = item.Snippet.PublishedAt
		info.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
	}

	if item.ContentDetails != nil {
		info.Duration, info.DurationSeconds = ParseDuration(item.ContentDetails.Duration)
	}

	if item.Statistics != nil {
		info.ViewCount = item.Statistics.ViewCount
		info.LikeCount = item.Statistics.LikeCount
	}

	return info
}

// bestThumbnail picks the highest resolution variant available.
func bestThumbnail(thumbs *yt.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}

	for _, t := range []*yt.Thumbnail{thumbs.Maxres, thumbs.High, thumbs.Medium, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}

	return ""
}
