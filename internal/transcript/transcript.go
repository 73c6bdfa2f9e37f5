// Package transcript resolves subtitle text for a video through an ordered
// chain of strategies. The first strategy to produce usable text wins; total
// failure is an empty result, not an error.
package transcript

// Source records where a transcript came from.
type Source string

// Source values, in rough order of quality.
const (
	SourceNone        Source = ""
	SourceManual      Source = "manual"
	SourceAuto        Source = "auto"
	SourceTranslated  Source = "translated"
	SourceAPI         Source = "transcript-api"
	SourceDescription Source = "description"
)

// Result is a resolved transcript with its provenance.
type Result struct {
	Text     string
	Source   Source
	Language string
}

// Empty reports whether the result carries no transcript.
func (r Result) Empty() bool {
	return r.Text == ""
}

// minUsableLength is the threshold below which a transcript is treated as
// unusable noise.
const minUsableLength = 100

// Usable reports whether the transcript is long enough to summarize.
func (r Result) Usable() bool {
	return len(r.Text) > minUsableLength
}
