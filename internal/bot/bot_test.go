package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tubenotion/summary-bot/internal/config"
	"github.com/tubenotion/summary-bot/internal/notion"
	"github.com/tubenotion/summary-bot/internal/summarize"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/workflow"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

type stubMetadata struct{}

func (stubMetadata) Fetch(_ context.Context, id string) (youtube.VideoInfo, bool) {
	return youtube.VideoInfo{ID: id, Title: "Video"}, true
}

// signalingResolver reports each Resolve call and then waits for release, so a
// test can observe how many links are in flight at once.
type signalingResolver struct {
	started chan string
	release chan struct{}
}

func (r *signalingResolver) Resolve(_ context.Context, videoID string) transcript.Result {
	r.started <- videoID
	<-r.release

	return transcript.Result{Text: strings.Repeat("w ", 100), Source: transcript.SourceManual}
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(_ context.Context, _ summarize.Style, _ string, _ youtube.VideoInfo, _ transcript.Result) (summarize.Outcome, error) {
	return summarize.Outcome{Text: "summary", Provider: "gemini"}, nil
}

type disabledWriter struct{}

func (disabledWriter) Enabled() bool { return false }

func (disabledWriter) Save(_ context.Context, _ notion.PageInput) (notion.PageRef, bool) {
	return notion.PageRef{}, false
}

// fakeTelegram serves just enough of the Bot API for a long-poll loop: getMe,
// one getUpdates batch, and message sends.
type fakeTelegram struct {
	mu      sync.Mutex
	updates string
	served  bool
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"test","username":"testbot"}}`)
	case strings.HasSuffix(r.URL.Path, "/getUpdates"):
		f.mu.Lock()
		batch := "[]"
		if !f.served {
			batch = f.updates
			f.served = true
		}
		f.mu.Unlock()
		fmt.Fprintf(w, `{"ok":true,"result":%s}`, batch)
	default:
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":100,"chat":{"id":7,"type":"private"},"date":1,"text":"x"}}`)
	}
}

func updateWithLink(updateID int, videoID string) string {
	return fmt.Sprintf(
		`{"update_id":%d,"message":{"message_id":%d,"date":1,"chat":{"id":7,"type":"private"},"text":"https://youtu.be/%s"}}`,
		updateID, updateID, videoID,
	)
}

func TestRunDispatchesUpdatesConcurrently(t *testing.T) {
	fake := &fakeTelegram{updates: "[" + updateWithLink(1, "dQw4w9WgXcQ") + "," + updateWithLink(2, "abcdefghijk") + "]"}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	defer srv.Close()

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("42:token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	logger := zerolog.Nop()
	resolver := &signalingResolver{started: make(chan string, 2), release: make(chan struct{})}
	controller := workflow.NewController(stubMetadata{}, resolver, stubSummarizer{}, disabledWriter{}, &logger)

	b := &Bot{
		cfg:        &config.Config{},
		routing:    &config.Routing{Channels: map[string]config.ChannelRoute{"7": {Style: "archive"}}},
		controller: controller,
		api:        api,
		logger:     &logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = b.Run(ctx) }()

	// Both links must reach the pipeline while the first transcript is still
	// being resolved. A blocking update loop would never start the second.
	for i := 0; i < 2; i++ {
		select {
		case <-resolver.started:
		case <-time.After(5 * time.Second):
			t.Fatalf("only %d of 2 updates started processing", i)
		}
	}

	close(resolver.release)
}
