package validation

import (
	"regexp"
	"strings"

	"yt-captions/errors"
)

var (
	watchParamPattern = regexp.MustCompile(`v=([a-zA-Z0-9_-]+)`)
	shortLinkPattern  = regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]+)`)
	videoIDPattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)
)

// NormalizeVideoID reduces a raw identifier or YouTube URL to the bare
// 11-character video ID. URL extraction and the final format gate are
// independent: a matching URL whose captured ID is malformed still fails.
func NormalizeVideoID(raw string) (string, error) {
	const op = "validation.NormalizeVideoID"

	id := raw
	if strings.Contains(id, "youtube.com/watch?v=") {
		if m := watchParamPattern.FindStringSubmatch(id); m != nil {
			id = m[1]
		}
	} else if strings.Contains(id, "youtu.be/") {
		if m := shortLinkPattern.FindStringSubmatch(id); m != nil {
			id = m[1]
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", errors.InvalidInput(op, nil, raw, "Invalid YouTube video ID format")
	}

	return id, nil
}
