// Package videoid detects YouTube video identifiers in free-form chat text.
package videoid

import (
	"regexp"
	"sort"
)

// idPattern is the canonical shape of a YouTube video identifier.
const idPattern = `([A-Za-z0-9_-]{11})`

// patterns cover the URL shapes YouTube serves: desktop watch pages, short
// links, mobile subdomains, embeds, legacy /v/ paths, shorts, and live pages.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/watch\?(?:[^\s&]*&)*v=` + idPattern),
	regexp.MustCompile(`(?:https?://)?youtu\.be/` + idPattern),
	regexp.MustCompile(`(?:https?://)?m\.youtube\.com/watch\?(?:[^\s&]*&)*v=` + idPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/embed/` + idPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/v/` + idPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/shorts/` + idPattern),
	regexp.MustCompile(`(?:https?://)?m\.youtube\.com/shorts/` + idPattern),
	regexp.MustCompile(`(?:https?://)?(?:www\.)?youtube\.com/live/` + idPattern),
}

var idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

type hit struct {
	id  string
	pos int
}

// Detect extracts all YouTube video identifiers from text, in order of first
// appearance, with duplicates removed. Text with no links yields nil.
func Detect(text string) []string {
	if text == "" {
		return nil
	}

	var hits []hit

	for _, re := range patterns {
		for _, match := range re.FindAllStringSubmatchIndex(text, -1) {
			id := text[match[2]:match[3]]
			if !Validate(id) {
				continue
			}

			hits = append(hits, hit{id: id, pos: match[0]})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var ids []string

	seen := make(map[string]bool)

	for _, h := range hits {
		if seen[h.id] {
			continue
		}

		seen[h.id] = true

		ids = append(ids, h.id)
	}

	return ids
}

// Validate reports whether id is a well-formed YouTube video identifier.
func Validate(id string) bool {
	return idRegex.MatchString(id)
}

// WatchURL returns the canonical watch URL for a video identifier.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}
