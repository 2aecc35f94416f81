package transcript

import (
	"context"
	"errors"
)

// ErrNoTranscript reports that the video exists and is reachable but has no
// transcript at all. Callers treat it differently from every other failure.
var ErrNoTranscript = errors.New("no transcript available for this video")

// Segment is one timed unit of transcript text.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Result is a full transcript in a single language.
type Result struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
}

// Fetcher retrieves the transcript for a video ID. Implementations own
// their networking; callers own the deadline on ctx.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string) (*Result, error)
}
