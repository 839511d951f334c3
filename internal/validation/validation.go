package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	videoIDRegex   = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
	channelIDRegex = regexp.MustCompile(`^UC[a-zA-Z0-9_-]{22}$`)
	handleRegex    = regexp.MustCompile(`^[\p{L}\p{N}._·-]{3,30}$`)
)

// IsValidVideoID reports whether videoID looks like an 11-character YouTube video id.
func IsValidVideoID(videoID string) bool {
	return videoIDRegex.MatchString(videoID)
}

// IsValidChannelID reports whether channelID looks like a "UC..." channel id.
func IsValidChannelID(channelID string) bool {
	return channelIDRegex.MatchString(channelID)
}

// TrimHandle strips the "@" and, for channel URLs such as https://www.youtube.com/@handle,
// the URL around it. Legacy /c/name and /user/name URLs yield the name. The result is not
// format-checked.
func TrimHandle(input string) string {
	handle := strings.TrimSpace(input)

	if strings.Contains(handle, "youtube.com/") {
		raw := handle
		if !strings.Contains(raw, "://") {
			raw = "https://" + raw
		}
		if u, err := url.Parse(raw); err == nil {
			segments := strings.Split(strings.Trim(u.Path, "/"), "/")
			switch {
			case strings.HasPrefix(segments[0], "@"):
				handle = segments[0]
			case (segments[0] == "c" || segments[0] == "user") && len(segments) > 1:
				handle = segments[1]
			}
		}
	}

	return strings.TrimPrefix(handle, "@")
}

// NormalizeHandle is TrimHandle followed by a format check of the bare handle.
func NormalizeHandle(input string) (string, error) {
	handle := TrimHandle(input)
	if !handleRegex.MatchString(handle) {
		return "", fmt.Errorf("invalid channel handle format: %q", input)
	}
	return handle, nil
}
