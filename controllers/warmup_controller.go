package controller

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mailramp/config"
	"mailramp/models"
	"mailramp/warmup"
)

const (
	ErrInvalidSenderID      = "invalid sender ID"
	ErrSenderNotFound       = "sender not found"
	ErrSMTPNotVerified      = "sender SMTP configuration must be verified before starting warmup"
	ErrWarmupAlreadyRunning = "warmup is already running for this sender"
	ErrWarmupNotRunning     = "warmup is not running for this sender"
	ErrInvalidRequestBody   = "invalid request body"
)

type WarmupController struct {
	Logger    *log.Logger
	Engine    *warmup.Engine
	Stats     *warmup.Aggregator
	Simulator *warmup.Simulator
}

func NewWarmupController(logger *log.Logger, engine *warmup.Engine, stats *warmup.Aggregator, simulator *warmup.Simulator) *WarmupController {
	return &WarmupController{
		Logger:    logger,
		Engine:    engine,
		Stats:     stats,
		Simulator: simulator,
	}
}

func (wc *WarmupController) loadSender(c *fiber.Ctx) (*models.Sender, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	senderID, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrInvalidSenderID,
		})
	}

	var sender models.Sender
	if err := config.DB.Where("id = ? AND user_id = ?", senderID, userID).First(&sender).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": ErrSenderNotFound,
			})
		}
		wc.Logger.Printf("Database error fetching sender: %v", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return &sender, nil
}

// StartWarmup enables the ramp for a sender and makes it due immediately.
func (wc *WarmupController) StartWarmup(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	if !sender.SMTPVerified {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrSMTPNotVerified,
		})
	}
	if sender.WarmupEnabled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrWarmupAlreadyRunning,
		})
	}

	// Day records exist from this point on; the ramp is anchored here.
	if _, err := wc.Engine.EnsureProgress(sender.ID); err != nil {
		wc.Logger.Printf("Failed to initialize progress for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to initialize warmup progress",
		})
	}

	now := time.Now().UTC()
	if err := config.DB.Model(sender).Updates(map[string]interface{}{
		"warmup_enabled":    true,
		"warmup_started_at": now,
		"next_warmup_at":    now,
		"last_error":        nil,
	}).Error; err != nil {
		wc.Logger.Printf("Failed to start warmup for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to start warmup",
		})
	}

	wc.Logger.Printf("Warmup started for sender %d", sender.ID)
	return c.JSON(fiber.Map{
		"message": "warmup started successfully",
		"data": fiber.Map{
			"warmup_enabled":    true,
			"warmup_started_at": now,
		},
	})
}

// StopWarmup disables the ramp and cancels pending simulated engagement.
func (wc *WarmupController) StopWarmup(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	if !sender.WarmupEnabled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": ErrWarmupNotRunning,
		})
	}

	if err := config.DB.Model(sender).Updates(map[string]interface{}{
		"warmup_enabled": false,
		"next_warmup_at": nil,
	}).Error; err != nil {
		wc.Logger.Printf("Failed to stop warmup for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to stop warmup",
		})
	}
	wc.Simulator.Cancel(sender.ID)

	return c.JSON(fiber.Map{
		"message": "warmup stopped successfully",
	})
}

// GetWarmupStatus returns the current day, target and remaining quota.
func (wc *WarmupController) GetWarmupStatus(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	status := fiber.Map{
		"warmup_enabled":    sender.WarmupEnabled,
		"warmup_started_at": sender.WarmupStartedAt,
		"warmup_done_at":    sender.WarmupDoneAt,
		"next_warmup_at":    sender.NextWarmupAt,
	}

	if sender.WarmupEnabled || sender.WarmupStartedAt != nil {
		day, err := wc.Engine.CurrentDay(sender.ID)
		if err != nil {
			wc.Logger.Printf("Failed to resolve current day for sender %d: %v", sender.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load warmup status",
			})
		}
		remaining, err := wc.Engine.RemainingToday(sender.ID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load warmup status",
			})
		}
		status["current_day"] = day
		status["target_today"] = wc.Engine.TargetForDay(day)
		status["remaining_today"] = remaining
	}

	return c.JSON(fiber.Map{"data": status})
}

// GetWarmupProgress returns the full day-by-day ramp for a sender.
func (wc *WarmupController) GetWarmupProgress(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	days, err := wc.Engine.EnsureProgress(sender.ID)
	if err != nil {
		wc.Logger.Printf("Failed to load progress for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load warmup progress",
		})
	}

	return c.JSON(fiber.Map{"data": days})
}

// ResetWarmup clears completed flags and counters so the ramp resumes.
// The operator escape hatch for a stalled schedule.
func (wc *WarmupController) ResetWarmup(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	if err := wc.Engine.ResetProgress(sender.ID); err != nil {
		wc.Logger.Printf("Failed to reset progress for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to reset warmup progress",
		})
	}

	return c.JSON(fiber.Map{
		"message": "warmup progress reset successfully",
	})
}

// GetWarmupStats returns the all-time overview plus the daily rows.
func (wc *WarmupController) GetWarmupStats(c *fiber.Ctx) error {
	sender, errResp := wc.loadSender(c)
	if sender == nil {
		return errResp
	}

	overview, err := wc.Stats.OverallStats(sender.ID)
	if err != nil {
		wc.Logger.Printf("Failed to load stats for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch statistics",
		})
	}

	var daily []models.WarmupStat
	if err := config.DB.Where("sender_id = ?", sender.ID).
		Order("date ASC").
		Find(&daily).Error; err != nil {
		wc.Logger.Printf("Failed to load daily stats for sender %d: %v", sender.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch statistics",
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"overview": overview,
			"daily":    daily,
		},
	})
}
