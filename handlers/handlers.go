package handlers

import (
	"github.com/gofiber/fiber/v2"

	"yt-captions/errors"
	"yt-captions/models"
	"yt-captions/services/captions"
)

const serviceName = "YouTube Caption Extractor"

type CaptionHandler struct {
	service captions.Service
	version string
}

func NewCaptionHandler(service captions.Service, version string) *CaptionHandler {
	return &CaptionHandler{
		service: service,
		version: version,
	}
}

// GetCaptions handles POST /get-captions
func (h *CaptionHandler) GetCaptions(c *fiber.Ctx) error {
	const op = "CaptionHandler.GetCaptions"

	var req models.CaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return errors.InvalidInput(op, err, "", "Invalid JSON body")
	}

	resp, err := h.service.GetCaptions(c.UserContext(), req.VideoID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GetCaptionsByPath handles GET /video/:video_id/captions; identical
// behavior to the POST endpoint with the ID taken from the path.
func (h *CaptionHandler) GetCaptionsByPath(c *fiber.Ctx) error {
	resp, err := h.service.GetCaptions(c.UserContext(), c.Params("video_id"))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// Root handles GET /
func (h *CaptionHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": serviceName,
		"version": h.version,
		"endpoints": fiber.Map{
			"get_captions": "/get-captions",
			"health":       "/health",
		},
	})
}

// Health handles GET /health
func (h *CaptionHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "youtube-caption-extractor",
	})
}
