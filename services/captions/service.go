package captions

import (
	"context"
	stderrors "errors"
	"regexp"
	"strings"
	"time"

	"yt-captions/errors"
	"yt-captions/models"
	"yt-captions/transcript"
	"yt-captions/validation"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Service interface {
	// GetCaptions normalizes the raw identifier, fetches the transcript
	// and returns the cleaned caption payload.
	GetCaptions(ctx context.Context, rawID string) (*models.CaptionResponse, error)
}

type Config struct {
	// FetchTimeout bounds the upstream transcript fetch.
	FetchTimeout time.Duration `json:"fetch_timeout"`

	// Upstream rate limit (requests per second, burst).
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`

	// DefaultLanguage is reported when upstream gives no language tag.
	DefaultLanguage string `json:"default_language"`
}

type service struct {
	fetcher transcript.Fetcher
	limiter *rate.Limiter
	config  Config
	logger  zerolog.Logger
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func NewService(fetcher transcript.Fetcher, config Config, logger zerolog.Logger) Service {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 15 * time.Second
	}
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = 5
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}

	return &service{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		config:  config,
		logger:  logger,
	}
}

func (s *service) GetCaptions(ctx context.Context, rawID string) (*models.CaptionResponse, error) {
	const op = "CaptionService.GetCaptions"

	videoID, err := validation.NormalizeVideoID(rawID)
	if err != nil {
		s.logger.Info().Err(err).Str("raw_id", rawID).Msg("Video ID validation failed")
		return nil, err
	}

	logger := s.logger.With().Str("video_id", videoID).Logger()
	logger.Info().Msg("Processing caption request")

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.Internal(op, err, videoID, "Error processing video: upstream rate limit wait cancelled")
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.fetcher.Fetch(fetchCtx, videoID)
	if err != nil {
		if stderrors.Is(err, transcript.ErrNoTranscript) {
			logger.Warn().Err(err).Msg("No transcript available")
			return nil, errors.NoTranscript(op, err, videoID)
		}
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Transcript fetch failed")
		return nil, errors.Classify(op, err, videoID)
	}

	captions, totalDuration := flatten(result.Segments)

	language := result.Language
	if language == "" {
		language = s.config.DefaultLanguage
	}

	logger.Info().
		Int("segments", len(result.Segments)).
		Int("caption_length", len(captions)).
		Str("language", language).
		Dur("duration", time.Since(start)).
		Msg("Captions extracted")

	return &models.CaptionResponse{
		VideoID:       videoID,
		Captions:      captions,
		Language:      language,
		TotalDuration: totalDuration,
	}, nil
}

// flatten joins segment texts into one single-spaced string and computes
// the end time of the last-ending segment, which is not necessarily the
// last segment in sequence order.
func flatten(segments []transcript.Segment) (string, float64) {
	texts := make([]string, 0, len(segments))
	var totalDuration float64

	for _, seg := range segments {
		texts = append(texts, seg.Text)
		if end := seg.Start + seg.Duration; end > totalDuration {
			totalDuration = end
		}
	}

	captions := strings.Join(texts, " ")
	captions = whitespaceRun.ReplaceAllString(captions, " ")
	captions = strings.TrimSpace(captions)

	return captions, totalDuration
}
