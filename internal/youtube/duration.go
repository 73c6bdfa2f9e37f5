package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

// iso8601Duration matches the PT#H#M#S durations returned by the Data API.
var iso8601Duration = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO-8601 duration into a human clock string and
// total seconds. Missing designators count as zero; an unparseable value
// yields ("0:00", 0).
func ParseDuration(raw string) (string, int) {
	match := iso8601Duration.FindStringSubmatch(raw)
	if match == nil {
		return "0:00", 0
	}

	hours := atoiZero(match[1])
	minutes := atoiZero(match[2])
	seconds := atoiZero(match[3])

	total := hours*3600 + minutes*60 + seconds

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds), total
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds), total
}

func atoiZero(s string) int {
	if s == "" {
		return 0
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}

	return n
}
