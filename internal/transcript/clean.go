package transcript

import (
	"regexp"
	"strings"
)

var (
	inlineTagRegex  = regexp.MustCompile(`<[^>]+>`)
	cueTimingRegex  = regexp.MustCompile(`\d{2}:\d{2}:\d{2}[.,]\d{3}\s*-->`)
	digitsOnlyRegex = regexp.MustCompile(`^\d+$`)
)

// CleanCaptionText strips WebVTT/SRT structure from a raw caption payload and
// returns utterance lines joined by spaces. Headers, cue timings, numeric cue
// indexes, and inline styling tags are removed.
func CleanCaptionText(raw string) string {
	return strings.Join(CleanCaptionLines(raw), " ")
}

// CleanCaptionLines is CleanCaptionText before the final join, for callers
// that run extra line-level passes.
func CleanCaptionLines(raw string) []string {
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if isCaptionStructure(line) {
			continue
		}

		line = strings.Join(strings.Fields(inlineTagRegex.ReplaceAllString(line, "")), " ")
		if line == "" {
			continue
		}

		lines = append(lines, line)
	}

	return CollapseConsecutive(lines)
}

func isCaptionStructure(line string) bool {
	switch {
	case strings.HasPrefix(line, "WEBVTT"):
		return true
	case strings.HasPrefix(line, "NOTE"):
		return true
	case strings.HasPrefix(line, "Kind:"):
		return true
	case strings.HasPrefix(line, "Language:"):
		return true
	case strings.HasPrefix(line, "Style:"):
		return true
	case cueTimingRegex.MatchString(line):
		return true
	case digitsOnlyRegex.MatchString(line):
		return true
	}

	return false
}

// CollapseConsecutive removes runs of identical adjacent lines. Rolling
// captions repeat each utterance across cues; collapsing is idempotent.
func CollapseConsecutive(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	out := make([]string, 1, len(lines))
	out[0] = lines[0]

	for _, line := range lines[1:] {
		if line == out[len(out)-1] {
			continue
		}

		out = append(out, line)
	}

	return out
}

// jaccardThreshold marks adjacent lines as near-duplicates when their token
// overlap exceeds this share.
const jaccardThreshold = 0.8

// CollapseNearDuplicates additionally removes adjacent lines whose token sets
// overlap heavily. Optional; rolling auto-captions sometimes re-emit a line
// with one word appended, which exact collapse misses.
func CollapseNearDuplicates(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}

	out := make([]string, 1, len(lines))
	out[0] = lines[0]

	for _, line := range lines[1:] {
		if jaccard(tokens(out[len(out)-1]), tokens(line)) >= jaccardThreshold {
			// Keep the longer variant of the pair.
			if len(line) > len(out[len(out)-1]) {
				out[len(out)-1] = line
			}

			continue
		}

		out = append(out, line)
	}

	return out
}

func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = true
	}

	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0

	for tok := range a {
		if b[tok] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}
