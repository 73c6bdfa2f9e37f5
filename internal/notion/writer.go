package notion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tubenotion/summary-bot/internal/platform/observability"
)

// PageInput is everything the writer needs to build a page.
type PageInput struct {
	Title         string
	SourceURL     string
	Markdown      string
	RequesterNote string

	// DatabaseID overrides the default target database when non-empty.
	DatabaseID string
}

// Writer turns summaries into pages, honoring the per-request block cap by
// committing in two phases: create with the first chunk, append the rest.
type Writer struct {
	client *Client
	logger *zerolog.Logger
}

// NewWriter creates a page writer over a client.
func NewWriter(client *Client, logger *zerolog.Logger) *Writer {
	return &Writer{client: client, logger: logger}
}

// Enabled returns whether persistence is configured.
func (w *Writer) Enabled() bool {
	return w.client.Enabled()
}

// Save persists a page and returns its reference, or ok=false when
// persistence is disabled or the page could not be created. A failure after
// the page exists still returns the reference: a partial page beats a lost
// one.
func (w *Writer) Save(ctx context.Context, input PageInput) (PageRef, bool) {
	if !w.client.Enabled() {
		w.logger.Debug().Msg("page persistence disabled, skipping save")

		return PageRef{}, false
	}

	blocks := buildPageBlocks(input)

	first := blocks
	if len(first) > MaxBlocksPerRequest {
		first = blocks[:MaxBlocksPerRequest]
	}

	ref, err := w.client.CreatePage(ctx, input.DatabaseID, input.Title, first)
	if err != nil {
		w.logger.Error().Err(err).Str("title", input.Title).Msg("page create failed")
		observability.PagesCreated.WithLabelValues("error").Inc()

		return PageRef{}, false
	}

	observability.PageBlocksAppended.Add(float64(len(first)))

	for offset := MaxBlocksPerRequest; offset < len(blocks); offset += MaxBlocksPerRequest {
		end := offset + MaxBlocksPerRequest
		if end > len(blocks) {
			end = len(blocks)
		}

		if err := w.client.AppendChildren(ctx, ref.ID, blocks[offset:end]); err != nil {
			w.logger.Error().
				Err(err).
				Str("page_id", ref.ID).
				Int("appended", offset).
				Int("total", len(blocks)).
				Msg("block append failed, page is partial")
			observability.PagesCreated.WithLabelValues("partial").Inc()

			return ref, true
		}

		observability.PageBlocksAppended.Add(float64(end - offset))
	}

	observability.PagesCreated.WithLabelValues("ok").Inc()

	return ref, true
}

// buildPageBlocks assembles the fixed page layout: source embed, divider,
// document body, and the requester context at the end.
func buildPageBlocks(input PageInput) []Block {
	blocks := []Block{
		NewEmbed(input.SourceURL),
		NewDivider(),
	}

	blocks = append(blocks, MarkdownToBlocks(input.Markdown)...)

	if input.RequesterNote != "" {
		blocks = append(blocks,
			NewDivider(),
			NewParagraph([]RichText{NewText(fmt.Sprintf("Requested via %s", input.RequesterNote))}),
		)
	}

	return blocks
}
