package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"yt-captions/errors"
	"yt-captions/models"
)

// ErrorHandler converts every failure that escapes a handler into the
// classified JSON error shape. Nothing leaves the service unclassified:
// unknown errors become PROCESSING_ERROR.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	body := models.ErrorResponse{
		Error:     "Internal server error",
		ErrorCode: string(errors.CodeProcessingError),
	}

	if e, ok := err.(*errors.AppError); ok {
		status = e.Status
		body.Error = e.Message
		body.ErrorCode = string(e.Code)
		body.VideoID = e.VideoID
	} else if e, ok := err.(*fiber.Error); ok {
		status = e.Code
		body.Error = e.Message
	}

	log.Error().
		Str("request_id", c.Get("X-Request-ID")).
		Str("path", c.Path()).
		Str("method", c.Method()).
		Int("status", status).
		Str("error_code", body.ErrorCode).
		Err(err).
		Msg("Request error")

	return c.Status(status).JSON(body)
}
