package controller

import (
	"crypto/subtle"
	"log"

	"github.com/gofiber/fiber/v2"

	"mailramp/utils"
	"mailramp/warmup"
)

// transparent 1x1 GIF served from the open-tracking endpoint
var trackingPixel = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

// TrackingController receives the external engagement signals: pixel
// hits, reply webhooks, spam reports and bounce notifications.
type TrackingController struct {
	Logger  *log.Logger
	Tracker *warmup.Tracker
}

func NewTrackingController(logger *log.Logger, tracker *warmup.Tracker) *TrackingController {
	return &TrackingController{
		Logger:  logger,
		Tracker: tracker,
	}
}

// HandleOpenTracking serves the tracking pixel and records the open.
func (tc *TrackingController) HandleOpenTracking(c *fiber.Ctx) error {
	trackingID := c.Params("trackingID")
	token := c.Params("token")

	expected := utils.TrackingToken(trackingID)
	if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
		return c.SendStatus(fiber.StatusNotFound)
	}

	if err := tc.Tracker.MarkOpened(trackingID); err != nil {
		// Unknown ids get the pixel anyway; the signal is best-effort.
		tc.Logger.Printf("Failed to track open for %s: %v", trackingID, err)
	}

	c.Set("Content-Type", "image/gif")
	c.Set("Cache-Control", "no-store")
	return c.Send(trackingPixel)
}

// HandleReplyWebhook records a reply reported by an external observer.
func (tc *TrackingController) HandleReplyWebhook(c *fiber.Ctx) error {
	var input struct {
		TrackingID string `json:"tracking_id" validate:"required"`
		Body       string `json:"body"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidRequestBody,
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := tc.Tracker.MarkReplied(input.TrackingID, input.Body); err != nil {
		tc.Logger.Printf("Failed to track reply for %s: %v", input.TrackingID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown tracking id",
		})
	}

	return c.JSON(fiber.Map{"message": "reply tracked successfully"})
}

// HandleSpamReport records a spam-folder placement for a probe.
func (tc *TrackingController) HandleSpamReport(c *fiber.Ctx) error {
	var input struct {
		TrackingID string `json:"tracking_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidRequestBody,
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := tc.Tracker.MarkSpam(input.TrackingID); err != nil {
		tc.Logger.Printf("Failed to track spam report for %s: %v", input.TrackingID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown tracking id",
		})
	}

	return c.JSON(fiber.Map{"message": "spam report tracked successfully"})
}

// HandleBounceWebhook records a bounce against a sender.
func (tc *TrackingController) HandleBounceWebhook(c *fiber.Ctx) error {
	var input struct {
		SenderID uint `json:"sender_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidRequestBody,
		})
	}
	if err := utils.ValidateStruct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := tc.Tracker.MarkBounced(input.SenderID); err != nil {
		tc.Logger.Printf("Failed to track bounce for sender %d: %v", input.SenderID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to track bounce",
		})
	}

	return c.JSON(fiber.Map{"message": "bounce tracked successfully"})
}
