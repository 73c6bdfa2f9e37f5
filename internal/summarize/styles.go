package summarize

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/tubenotion/summary-bot/internal/core/errors"
	"github.com/tubenotion/summary-bot/internal/transcript"
	"github.com/tubenotion/summary-bot/internal/youtube"
)

// Style selects the prompt pair used to restructure a transcript.
type Style string

// Registered styles.
const (
	// StyleArchive restructures the full transcript into a readable
	// reference document.
	StyleArchive Style = "archive"

	// StyleAgentReference reorganizes the transcript into a structured
	// knowledge document for later machine consumption.
	StyleAgentReference Style = "agent_reference"
)

// DefaultStyle is used when a channel mapping does not name one.
const DefaultStyle = StyleArchive

// Placeholder tokens in prompt templates.
const (
	tokenTitle      = "{{TITLE}}"
	tokenChannel    = "{{CHANNEL}}"
	tokenDuration   = "{{DURATION}}"
	tokenURL        = "{{URL}}"
	tokenTranscript = "{{TRANSCRIPT}}"
)

const archiveSystemPrompt = `You are an archivist converting video transcripts into complete written documents.
Rules:
- Preserve ALL content from the transcript. Do not compress, shorten, or omit anything.
- Restructure the spoken text into clean written prose with headings.
- Translate into Korean if the transcript is in another language.
- Output Markdown: "#"-style headings, "-" bullets, and **bold** for key terms.
- Never add information that is not in the transcript.`

const archiveUserPrompt = `Video: {{TITLE}}
Channel: {{CHANNEL}}
Duration: {{DURATION}}
URL: {{URL}}

Convert the following transcript into a complete archival document. Keep every point the speaker makes.

Transcript:
{{TRANSCRIPT}}`

const agentReferenceSystemPrompt = `You convert video transcripts into structured reference documents for automation agents.
Rules:
- Preserve ALL factual content. Restructuring is allowed, compression is not.
- Organize content as: overview, then one section per topic, then actionable items.
- Translate into Korean if the transcript is in another language.
- Output Markdown with "#"-style headings and "-" bullets. Bold (**) key identifiers.
- Never add information that is not in the transcript.`

const agentReferenceUserPrompt = `Video: {{TITLE}}
Channel: {{CHANNEL}}
Duration: {{DURATION}}
URL: {{URL}}

Reorganize the following transcript into a structured reference document. Every fact must survive.

Transcript:
{{TRANSCRIPT}}`

type promptPair struct {
	system string
	user   string
}

// styleRegistry maps styles to their prompt pairs. Lookup fails closed: an
// unknown style is an error, not a silent default.
var styleRegistry = map[Style]promptPair{
	StyleArchive:        {system: archiveSystemPrompt, user: archiveUserPrompt},
	StyleAgentReference: {system: agentReferenceSystemPrompt, user: agentReferenceUserPrompt},
}

// ValidStyle reports whether s names a registered style.
func ValidStyle(s Style) bool {
	_, ok := styleRegistry[s]
	return ok
}

// truncationMarker is appended when a transcript is cut to fit a budget.
const truncationMarker = "\n\n[transcript truncated to fit model input limit]"

// Request is a fully rendered summarization request.
type Request struct {
	System string
	User   string
}

// BuildRequest renders the prompt pair for a style, truncating the transcript
// to charBudget with a visible marker.
func BuildRequest(style Style, info youtube.VideoInfo, tr transcript.Result, charBudget int) (Request, error) {
	pair, ok := styleRegistry[style]
	if !ok {
		return Request{}, fmt.Errorf("%w: %q", apperrors.ErrUnknownStyle, style)
	}

	text := tr.Text
	if charBudget > 0 && len(text) > charBudget {
		cut := charBudget
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}

		text = text[:cut] + truncationMarker
	}

	replacer := strings.NewReplacer(
		tokenTitle, info.Title,
		tokenChannel, info.ChannelTitle,
		tokenDuration, info.Duration,
		tokenURL, info.URL,
		tokenTranscript, text,
	)

	return Request{
		System: pair.system,
		User:   replacer.Replace(pair.user),
	}, nil
}
