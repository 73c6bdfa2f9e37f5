package transcript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	yt "github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
)

const (
	captionFetchTimeout = 20 * time.Second
	maxCaptionBodySize  = 5 * 1024 * 1024 // 5MB
	captionKindAuto     = "asr"
)

// CaptionsBackend resolves transcripts by inspecting the caption tracks the
// player exposes. It can distinguish manual from auto-generated tracks, which
// the transcript API cannot, so it runs first in the chain.
type CaptionsBackend struct {
	client     *yt.Client
	httpClient *http.Client
	language   string
	nearDupes  bool
	logger     *zerolog.Logger
}

// NewCaptionsBackend creates the caption-track strategy. language is the
// preferred subtitle language; English is always the second choice.
// nearDupes additionally collapses near-identical adjacent caption lines.
func NewCaptionsBackend(language string, nearDupes bool, logger *zerolog.Logger) *CaptionsBackend {
	return &CaptionsBackend{
		client:     &yt.Client{},
		httpClient: &http.Client{Timeout: captionFetchTimeout},
		language:   language,
		nearDupes:  nearDupes,
		logger:     logger,
	}
}

// Name identifies the strategy in logs.
func (b *CaptionsBackend) Name() string { return "captions" }

// Fetch lists the video's caption tracks, picks the best one, and downloads
// its payload as WebVTT.
func (b *CaptionsBackend) Fetch(ctx context.Context, videoID string) (Result, error) {
	video, err := b.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return Result{}, fmt.Errorf("player metadata: %w", err)
	}

	track, source, lang, ok := pickTrack(video.CaptionTracks, b.language)
	if !ok {
		return Result{}, apperrors.ErrNoTranscript
	}

	fetchURL := track.BaseURL + "&fmt=vtt"
	if source == SourceTranslated {
		fetchURL += "&tlang=" + b.language
	}

	raw, err := b.download(ctx, fetchURL)
	if err != nil {
		return Result{}, err
	}

	lines := CleanCaptionLines(raw)
	if b.nearDupes {
		lines = CollapseNearDuplicates(lines)
	}

	text := strings.Join(lines, " ")
	if text == "" {
		return Result{}, apperrors.ErrNoTranscript
	}

	b.logger.Debug().
		Str("video_id", videoID).
		Str("source", string(source)).
		Str("language", lang).
		Int("chars", len(text)).
		Msg("caption track resolved")

	return Result{Text: text, Source: source, Language: lang}, nil
}

func (b *CaptionsBackend) download(ctx context.Context, fetchURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", fmt.Errorf("create caption request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("caption request: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionBodySize))
	if err != nil {
		return "", fmt.Errorf("read caption body: %w", err)
	}

	return string(body), nil
}

// pickTrack selects a caption track by strict preference: manual in the
// preferred language, manual English, auto preferred, auto English, then any
// translatable track rendered into the preferred language.
func pickTrack(tracks []yt.CaptionTrack, language string) (yt.CaptionTrack, Source, string, bool) {
	type pref struct {
		lang   string
		auto   bool
		source Source
	}

	prefs := []pref{
		{language, false, SourceManual},
		{"en", false, SourceManual},
		{language, true, SourceAuto},
		{"en", true, SourceAuto},
	}

	for _, p := range prefs {
		for _, track := range tracks {
			if trackLangMatches(track.LanguageCode, p.lang) && (track.Kind == captionKindAuto) == p.auto {
				return track, p.source, track.LanguageCode, true
			}
		}
	}

	for _, track := range tracks {
		if track.IsTranslatable {
			return track, SourceTranslated, language, true
		}
	}

	return yt.CaptionTrack{}, SourceNone, "", false
}

// trackLangMatches treats regional variants ("en-US") as their base language.
func trackLangMatches(code, lang string) bool {
	return code == lang || strings.HasPrefix(code, lang+"-")
}
