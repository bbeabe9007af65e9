package controller

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"mailramp/config"
	"mailramp/models"
	"mailramp/utils"
)

type CreateSenderRequest struct {
	Name           string `json:"name" validate:"required"`
	FromEmail      string `json:"from_email" validate:"required,email"`
	FromName       string `json:"from_name" validate:"required"`
	SMTPHost       string `json:"smtp_host" validate:"required"`
	SMTPPort       int    `json:"smtp_port" validate:"required"`
	SMTPUsername   string `json:"smtp_username" validate:"required"`
	SMTPPassword   string `json:"smtp_password" validate:"required"`
	Encryption     string `json:"encryption" validate:"required,oneof=SSL TLS STARTTLS"`
	IMAPHost       string `json:"imap_host"`
	IMAPPort       int    `json:"imap_port"`
	IMAPUsername   string `json:"imap_username"`
	IMAPPassword   string `json:"imap_password"`
	IMAPEncryption string `json:"imap_encryption" validate:"omitempty,oneof=SSL TLS STARTTLS"`
	IMAPMailbox    string `json:"imap_mailbox"`
	DailyLimit     int    `json:"daily_limit" validate:"omitempty,min=1,max=2000"`
}

type UpdateSenderRequest struct {
	Name         *string `json:"name"`
	FromEmail    *string `json:"from_email" validate:"omitempty,email"`
	FromName     *string `json:"from_name"`
	SMTPPassword *string `json:"smtp_password"`
	IMAPPassword *string `json:"imap_password"`
	DailyLimit   *int    `json:"daily_limit" validate:"omitempty,min=1,max=2000"`
}

type TestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func CreateSender(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var req CreateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidRequestBody,
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// Encrypt sensitive data
	encryptedSMTPPassword, err := utils.Encrypt(req.SMTPPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encrypt SMTP password",
		})
	}

	encryptedIMAPPassword, err := utils.Encrypt(req.IMAPPassword)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encrypt IMAP password",
		})
	}

	sender := models.Sender{
		UserID:         userID,
		Name:           req.Name,
		FromEmail:      req.FromEmail,
		FromName:       req.FromName,
		SMTPHost:       req.SMTPHost,
		SMTPPort:       req.SMTPPort,
		SMTPUsername:   req.SMTPUsername,
		SMTPPassword:   encryptedSMTPPassword,
		Encryption:     req.Encryption,
		IMAPHost:       req.IMAPHost,
		IMAPPort:       req.IMAPPort,
		IMAPUsername:   req.IMAPUsername,
		IMAPPassword:   encryptedIMAPPassword,
		IMAPEncryption: req.IMAPEncryption,
		IMAPMailbox:    req.IMAPMailbox,
	}
	if req.DailyLimit > 0 {
		sender.DailyLimit = req.DailyLimit
	}

	if err := config.DB.Create(&sender).Error; err != nil {
		LogError("sender_create_failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create sender",
		})
	}

	// Sanitize before returning
	sender.Sanitize()

	return c.Status(fiber.StatusCreated).JSON(sender)
}

func GetSenders(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var senders []models.Sender
	if err := config.DB.Where("user_id = ?", userID).Find(&senders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch senders",
		})
	}

	for i := range senders {
		senders[i].Sanitize()
	}

	return c.JSON(senders)
}

func validateSenderID(id string) error {
	if id == "" || id == "undefined" {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid sender ID")
	}
	if _, err := strconv.Atoi(id); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Sender ID must be numeric")
	}
	return nil
}

func GetSender(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	senderID := c.Params("id")

	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var sender models.Sender
	if err := config.DB.Where("id = ? AND user_id = ?", senderID, userID).First(&sender).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrSenderNotFound,
		})
	}

	sender.Sanitize()
	return c.JSON(sender)
}

func UpdateSender(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	senderID := c.Params("id")

	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var req UpdateSenderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidRequestBody,
		})
	}

	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var sender models.Sender
	if err := config.DB.Where("id = ? AND user_id = ?", senderID, userID).First(&sender).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrSenderNotFound,
		})
	}

	if req.Name != nil {
		sender.Name = *req.Name
	}
	if req.FromEmail != nil {
		sender.FromEmail = *req.FromEmail
	}
	if req.FromName != nil {
		sender.FromName = *req.FromName
	}
	if req.SMTPPassword != nil {
		encrypted, err := utils.Encrypt(*req.SMTPPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to encrypt SMTP password",
			})
		}
		sender.SMTPPassword = encrypted
		// Credentials changed, re-verification required
		sender.SMTPVerified = false
	}
	if req.IMAPPassword != nil {
		encrypted, err := utils.Encrypt(*req.IMAPPassword)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to encrypt IMAP password",
			})
		}
		sender.IMAPPassword = encrypted
		sender.IMAPVerified = false
	}
	if req.DailyLimit != nil {
		sender.DailyLimit = *req.DailyLimit
	}

	if err := config.DB.Save(&sender).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update sender",
		})
	}

	sender.Sanitize()
	return c.JSON(sender)
}

func DeleteSender(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	senderID := c.Params("id")

	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var sender models.Sender
	if err := config.DB.Where("id = ? AND user_id = ?", senderID, userID).First(&sender).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrSenderNotFound,
		})
	}

	if sender.WarmupEnabled {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Stop warmup before deleting this sender",
		})
	}

	if err := config.DB.Delete(&sender).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete sender",
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TestSender dials the sender's SMTP and IMAP endpoints and records the
// verification outcome on the row.
func TestSender(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}
	senderID := c.Params("id")

	if err := validateSenderID(senderID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	var sender models.Sender
	if err := config.DB.Where("id = ? AND user_id = ?", senderID, userID).First(&sender).Error; err != nil {
		LogError("sender_not_found", err, map[string]interface{}{
			"user_id":   userID,
			"sender_id": senderID,
		})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": ErrSenderNotFound,
		})
	}

	// Reject obviously bad addresses before touching the network
	if check := utils.VerifyEmailAddress(sender.FromEmail); check.Status != "valid" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "From address rejected: " + check.Details,
		})
	}

	var results struct {
		SMTP TestResult `json:"smtp"`
		IMAP TestResult `json:"imap"`
	}

	if err := utils.VerifySMTP(&sender); err != nil {
		results.SMTP.Error = err.Error()
		LogError("smtp_verification", err, map[string]interface{}{
			"sender_id": sender.ID,
			"smtp_host": sender.SMTPHost,
		})
	} else {
		results.SMTP.Success = true
	}

	if sender.IMAPHost != "" {
		if err := utils.VerifyIMAP(&sender); err != nil {
			results.IMAP.Error = err.Error()
			LogError("imap_verification", err, map[string]interface{}{
				"sender_id": sender.ID,
				"imap_host": sender.IMAPHost,
			})
		} else {
			results.IMAP.Success = true
		}
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"smtp_verified":  results.SMTP.Success,
		"imap_verified":  results.IMAP.Success,
		"last_tested_at": now,
	}
	if results.SMTP.Success {
		updates["last_error"] = nil
	} else {
		updates["last_error"] = results.SMTP.Error
	}
	if err := config.DB.Model(&sender).Updates(updates).Error; err != nil {
		LogError("update_verification_failed", err, map[string]interface{}{
			"sender_id": sender.ID,
		})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update verification status",
		})
	}

	LogEvent("sender_test_completed", map[string]interface{}{
		"sender_id":    sender.ID,
		"smtp_success": results.SMTP.Success,
		"imap_success": results.IMAP.Success,
	})

	return c.JSON(fiber.Map{
		"message": "Sender test completed",
		"results": results,
	})
}

// LogError logs errors with structured context to both console and Sentry
func LogError(errorType string, err error, context map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"error_type": errorType,
		"error":      err.Error(),
	})

	for k, v := range context {
		log = log.WithField(k, v)
	}

	log.Error("Error occurred")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", errorType)
		for k, v := range context {
			scope.SetExtra(k, v)
		}
		sentry.CaptureException(err)
	})
}

// LogEvent logs events with structured context
func LogEvent(eventType string, data map[string]interface{}) {
	log := logrus.WithFields(logrus.Fields{
		"event_type": eventType,
	})

	for k, v := range data {
		log = log.WithField(k, v)
	}

	log.Info("Event occurred")

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Timestamp: time.Now(),
	})
}
