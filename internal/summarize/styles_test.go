package summarize

import (
	"strings"
	"testing"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

func testInfo() youtube.VideoInfo {
	return youtube.VideoInfo{
		ID:           "dQw4w9WgXcQ",
		URL:          "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		Title:        "Test Video",
		ChannelTitle: "Test Channel",
		Duration:     "12:34",
	}
}

func TestBuildRequestFillsPlaceholders(t *testing.T) {
	tr := transcript.Result{Text: "the spoken content", Source: transcript.SourceManual}

	req, err := BuildRequest(StyleArchive, testInfo(), tr, 0)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	for _, want := range []string{"Test Video", "Test Channel", "12:34", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "the spoken content"} {
		if !strings.Contains(req.User, want) {
			t.Errorf("user prompt missing %q", want)
		}
	}

	if strings.Contains(req.User, "{{") {
		t.Errorf("unreplaced placeholder in user prompt: %s", req.User)
	}

	if req.System == "" {
		t.Error("system prompt empty")
	}
}

func TestBuildRequestUnknownStyleFailsClosed(t *testing.T) {
	_, err := BuildRequest(Style("concise"), testInfo(), transcript.Result{Text: "x"}, 0)
	if !apperrors.Is(err, apperrors.ErrUnknownStyle) {
		t.Errorf("error = %v, want ErrUnknownStyle", err)
	}
}

func TestBuildRequestTruncatesWithMarker(t *testing.T) {
	tr := transcript.Result{Text: strings.Repeat("a", 500)}

	req, err := BuildRequest(StyleArchive, testInfo(), tr, 100)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	if !strings.Contains(req.User, truncationMarker) {
		t.Error("truncation marker missing")
	}

	if strings.Contains(req.User, strings.Repeat("a", 101)) {
		t.Error("transcript not truncated to budget")
	}
}

func TestBuildRequestTruncationRespectsRuneBoundaries(t *testing.T) {
	tr := transcript.Result{Text: strings.Repeat("한", 200)} // 3 bytes each

	req, err := BuildRequest(StyleArchive, testInfo(), tr, 100)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	if strings.Contains(req.User, "�") {
		t.Error("truncation split a rune")
	}
}

func TestBuildRequestNoTruncationUnderBudget(t *testing.T) {
	tr := transcript.Result{Text: "short"}

	req, err := BuildRequest(StyleAgentReference, testInfo(), tr, 1000)
	if err != nil {
		t.Fatalf("BuildRequest() error = %v", err)
	}

	if strings.Contains(req.User, truncationMarker) {
		t.Error("unexpected truncation marker")
	}
}

func TestValidStyle(t *testing.T) {
	if !ValidStyle(StyleArchive) || !ValidStyle(StyleAgentReference) {
		t.Error("registered styles should be valid")
	}

	if ValidStyle(Style("concise")) {
		t.Error("unregistered style should be invalid")
	}
}
