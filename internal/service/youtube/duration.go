package youtube

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ShortFormMaxSeconds is the longest duration still treated as a Short.
const ShortFormMaxSeconds = 60

// The API emits a day component for anything longer than 24h, e.g. "P1DT2H".
var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseVideoDuration converts an ISO 8601 duration to seconds.
// Example: "PT4M13S" -> 253 seconds. Absent components count as zero; a token with no
// components at all ("P", "PT") or any other shape is an error.
func ParseVideoDuration(duration string) (int, error) {
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil || strings.HasSuffix(duration, "T") {
		return 0, fmt.Errorf("invalid duration format: %q", duration)
	}

	multipliers := [...]int{86400, 3600, 60, 1}
	total := 0
	found := false
	for i, mult := range multipliers {
		group := match[i+1]
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %q: %w", duration, err)
		}
		total += n * mult
		found = true
	}

	if !found {
		return 0, fmt.Errorf("invalid duration format: %q", duration)
	}

	return total, nil
}

// IsShortForm reports whether a video of the given length is excluded from the report.
func IsShortForm(seconds int) bool {
	return seconds <= ShortFormMaxSeconds
}
