package errors

import (
	"fmt"
	"net/http"
	"strings"
)

// Classify maps an upstream fetch failure onto the error taxonomy by
// inspecting its message text. The substring rules mirror the wording
// YouTube uses today; keeping them in one place means a wording change
// upstream only touches this function. Order matters: the first match wins.
func Classify(op string, err error, videoID string) *AppError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "video unavailable") || strings.Contains(msg, "does not exist"):
		return &AppError{
			Status:  http.StatusNotFound,
			Code:    CodeVideoNotFound,
			Message: "Video not found or is unavailable",
			VideoID: videoID,
			Op:      op,
			Err:     err,
		}
	case strings.Contains(msg, "private"):
		return &AppError{
			Status:  http.StatusForbidden,
			Code:    CodeVideoPrivate,
			Message: "Video is private and captions cannot be accessed",
			VideoID: videoID,
			Op:      op,
			Err:     err,
		}
	case strings.Contains(msg, "disabled") || strings.Contains(msg, "not available"):
		return &AppError{
			Status:  http.StatusBadRequest,
			Code:    CodeCaptionsDisabled,
			Message: "Captions are disabled for this video",
			VideoID: videoID,
			Op:      op,
			Err:     err,
		}
	default:
		return &AppError{
			Status:  http.StatusInternalServerError,
			Code:    CodeProcessingError,
			Message: fmt.Sprintf("Error processing video: %v", err),
			VideoID: videoID,
			Op:      op,
			Err:     err,
		}
	}
}
