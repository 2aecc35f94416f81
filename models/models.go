package models

// CaptionRequest is the POST /get-captions body. VideoID may be a bare
// 11-character identifier or a full YouTube URL.
type CaptionRequest struct {
	VideoID string `json:"video_id"`
}

// CaptionResponse is the success payload.
type CaptionResponse struct {
	VideoID       string  `json:"video_id"`
	Captions      string  `json:"captions"`
	Language      string  `json:"language"`
	TotalDuration float64 `json:"total_duration"`
}

// ErrorResponse is the body for every classified failure.
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
	VideoID   string `json:"video_id"`
}
