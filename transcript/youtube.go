package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultWatchBase = "https://www.youtube.com"

// Markers in the watch page that decide playability before any caption data
// is looked at. The wording of the errors below is what the classification
// layer matches on.
const (
	markerLoginRequired = `"status":"LOGIN_REQUIRED"`
	markerErrorStatus   = `"status":"ERROR"`
	markerPlayability   = `"playabilityStatus":`
	markerRecaptcha     = `class="g-recaptcha"`
)

type Config struct {
	HTTPTimeout time.Duration
	UserAgent   string
}

// Client fetches transcripts by scraping the watch page for the player's
// caption track list and downloading the timedtext XML it points at.
type Client struct {
	httpClient *http.Client
	watchBase  string
	userAgent  string
	logger     zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		watchBase:  defaultWatchBase,
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}
}

func (c *Client) Fetch(ctx context.Context, videoID string) (*Result, error) {
	page, err := c.fetchWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := extractCaptionTracks(page)
	if err != nil {
		return nil, err
	}

	track := pickTrack(tracks)

	c.logger.Debug().
		Str("video_id", videoID).
		Str("language", track.LanguageCode).
		Str("kind", track.Kind).
		Msg("Selected caption track")

	segments, err := c.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return nil, err
	}

	return &Result{
		Segments: segments,
		Language: track.LanguageCode,
	}, nil
}

func (c *Client) fetchWatchPage(ctx context.Context, videoID string) (string, error) {
	url := fmt.Sprintf("%s/watch?v=%s", c.watchBase, videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to build watch page request")
	}
	req.Header.Set("Accept-Language", "en-US")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to fetch video page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video unavailable (HTTP %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to read video page")
	}

	return string(body), nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type captionsRenderer struct {
	CaptionTracks []captionTrack `json:"captionTracks"`
}

// extractCaptionTracks pulls the player's caption track list out of the
// watch page HTML. Playability markers are checked first so that removed,
// private, and throttled videos fail with their own message rather than a
// generic parse error.
func extractCaptionTracks(page string) ([]captionTrack, error) {
	if strings.Contains(page, markerRecaptcha) {
		return nil, fmt.Errorf("too many requests, upstream is asking for a captcha")
	}
	if strings.Contains(page, markerLoginRequired) {
		return nil, fmt.Errorf("video is private")
	}
	if strings.Contains(page, markerErrorStatus) || !strings.Contains(page, markerPlayability) {
		return nil, fmt.Errorf("video unavailable")
	}

	parts := strings.SplitN(page, `"captions":`, 2)
	if len(parts) < 2 {
		return nil, fmt.Errorf("captions are disabled for this video")
	}

	jsonPart := parts[1]
	end := strings.Index(jsonPart, `,"videoDetails`)
	if end == -1 {
		return nil, fmt.Errorf("failed to locate caption data in video page")
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.ReplaceAll(jsonPart[:end], "\n", "")), &wrapper); err != nil {
		return nil, errors.Wrap(err, "failed to parse caption data")
	}

	raw, ok := wrapper["playerCaptionsTracklistRenderer"]
	if !ok {
		return nil, fmt.Errorf("captions are disabled for this video")
	}

	var renderer captionsRenderer
	if err := json.Unmarshal(raw, &renderer); err != nil {
		return nil, errors.Wrap(err, "failed to parse caption track list")
	}

	if len(renderer.CaptionTracks) == 0 {
		return nil, ErrNoTranscript
	}

	return renderer.CaptionTracks, nil
}

// pickTrack accepts the upstream default: the English track when one
// exists, otherwise whatever track is listed first.
func pickTrack(tracks []captionTrack) captionTrack {
	for _, t := range tracks {
		if t.LanguageCode == "en" {
			return t
		}
	}
	return tracks[0]
}

type timedTextDoc struct {
	XMLName xml.Name    `xml:"transcript"`
	Texts   []timedText `xml:"text"`
}

type timedText struct {
	Start float64 `xml:"start,attr"`
	Dur   float64 `xml:"dur,attr"`
	Body  string  `xml:",chardata"`
}

// Caption text arrives double-escaped: the XML decoder strips one level,
// this replacer strips the second.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
)

func (c *Client) fetchTimedText(ctx context.Context, baseURL string) ([]Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transcript request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transcript")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch transcript (HTTP %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read transcript")
	}

	return parseTimedText(body)
}

func parseTimedText(data []byte) ([]Segment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse transcript XML")
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		segments = append(segments, Segment{
			Text:     entityReplacer.Replace(t.Body),
			Start:    t.Start,
			Duration: t.Dur,
		})
	}

	return segments, nil
}
