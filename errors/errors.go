package errors

import (
	"fmt"
	"net/http"
)

// Code identifies the stable error taxonomy exposed to API callers.
type Code string

const (
	CodeValidationError  Code = "VALIDATION_ERROR"
	CodeNoTranscript     Code = "NO_TRANSCRIPT_AVAILABLE"
	CodeVideoNotFound    Code = "VIDEO_NOT_FOUND"
	CodeVideoPrivate     Code = "VIDEO_PRIVATE"
	CodeCaptionsDisabled Code = "CAPTIONS_DISABLED"
	CodeProcessingError  Code = "PROCESSING_ERROR"
)

type AppError struct {
	Status  int    `json:"-"`
	Code    Code   `json:"error_code"`
	Message string `json:"error"`
	VideoID string `json:"video_id"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(op string, err error, videoID, message string) *AppError {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidationError,
		Message: message,
		VideoID: videoID,
		Op:      op,
		Err:     err,
	}
}

func NoTranscript(op string, err error, videoID string) *AppError {
	return &AppError{
		Status:  http.StatusNotFound,
		Code:    CodeNoTranscript,
		Message: "No captions/transcripts available for this video",
		VideoID: videoID,
		Op:      op,
		Err:     err,
	}
}

func Internal(op string, err error, videoID, message string) *AppError {
	return &AppError{
		Status:  http.StatusInternalServerError,
		Code:    CodeProcessingError,
		Message: message,
		VideoID: videoID,
		Op:      op,
		Err:     err,
	}
}
