package controller

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"mailramp/models"
	"mailramp/scheduler"
	"mailramp/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCampaignController(db *gorm.DB, logger *log.Logger) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCampaign registers a campaign and its rotation settings.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var input struct {
		Name             string `json:"name" validate:"required,min=3,max=100"`
		Subject          string `json:"subject"`
		SenderID         uint   `json:"sender_id"`
		RotationEnabled  bool   `json:"rotation_enabled"`
		RotationSenders  []uint `json:"rotation_senders"`
		EmailsPerAccount int    `json:"emails_per_account" validate:"min=0,max=500"`
		DelayMinutes     int    `json:"delay_minutes" validate:"min=0,max=1440"`
		DailyLimit       int    `json:"daily_limit" validate:"min=0,max=10000"`
		WindowStart      string `json:"window_start"`
		WindowEnd        string `json:"window_end"`
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

	campaign := models.Campaign{
		UserID:           userID,
		Name:             input.Name,
		Subject:          input.Subject,
		SenderID:         input.SenderID,
		RotationEnabled:  input.RotationEnabled,
		RotationSenders:  input.RotationSenders,
		EmailsPerAccount: input.EmailsPerAccount,
		DelayMinutes:     input.DelayMinutes,
		DailyLimit:       input.DailyLimit,
	}
	if input.WindowStart != "" {
		campaign.WindowStart = input.WindowStart
	}
	if input.WindowEnd != "" {
		campaign.WindowEnd = input.WindowEnd
	}

	if err := cc.DB.Create(&campaign).Error; err != nil {
		cc.Logger.Printf("Failed to create campaign: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create campaign",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "campaign created successfully",
		"data":    campaign,
	})
}

// GetCampaigns lists the user's campaigns.
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	var campaigns []models.Campaign
	if err := cc.DB.Where("user_id = ?", userID).Find(&campaigns).Error; err != nil {
		cc.Logger.Printf("Failed to fetch campaigns: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch campaigns",
		})
	}

	return c.JSON(fiber.Map{"data": campaigns})
}

// AddRecipients appends recipients to a campaign, rejecting malformed
// addresses up front.
func (cc *CampaignController) AddRecipients(c *fiber.Ctx) error {
	campaign, errResp := cc.loadCampaign(c)
	if campaign == nil {
		return errResp
	}

	var input struct {
		Recipients []struct {
			Email string `json:"email" validate:"required,email"`
			Name  string `json:"name"`
		} `json:"recipients" validate:"required,min=1,dive"`
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

	recipients := make([]models.CampaignRecipient, 0, len(input.Recipients))
	for _, r := range input.Recipients {
		recipients = append(recipients, models.CampaignRecipient{
			CampaignID: campaign.ID,
			Email:      r.Email,
			Name:       r.Name,
		})
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipients).Error; err != nil {
			return err
		}
		return tx.Model(campaign).
			Update("total_recipients", gorm.Expr("total_recipients + ?", len(recipients))).
			Error
	})
	if err != nil {
		cc.Logger.Printf("Failed to add recipients: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to add recipients",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("%d recipients added", len(recipients)),
	})
}

// PreviewPlan validates the rotation accounts and returns the full
// dispatch plan for the campaign's current recipient set.
func (cc *CampaignController) PreviewPlan(c *fiber.Ctx) error {
	campaign, errResp := cc.loadCampaign(c)
	if campaign == nil {
		return errResp
	}

	var pool []models.Sender
	if err := cc.DB.Where("user_id = ?", campaign.UserID).Find(&pool).Error; err != nil {
		cc.Logger.Printf("Failed to fetch sender pool: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch senders",
		})
	}

	rotationIDs := campaign.RotationSenders
	if !campaign.RotationEnabled {
		rotationIDs = []uint{campaign.SenderID}
	}
	if err := scheduler.ValidateAccounts(pool, rotationIDs); err != nil {
		var verr *scheduler.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":          "rotation accounts rejected",
				"missing_ids":    verr.Missing,
				"unverified_ids": verr.Unverified,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "account validation failed",
		})
	}

	var rows []models.CampaignRecipient
	if err := cc.DB.Where("campaign_id = ? AND sent_at IS NULL", campaign.ID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		cc.Logger.Printf("Failed to fetch recipients: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to fetch recipients",
		})
	}

	recipients := make([]scheduler.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, scheduler.Recipient{ID: row.ID, Email: row.Email})
	}

	rotation, err := rotationFromCampaign(campaign, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	plan, err := scheduler.BuildPlan(recipients, rotation)
	if err != nil {
		var cerr *scheduler.ConfigError
		if errors.As(err, &cerr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": cerr.Error(),
			})
		}
		cc.Logger.Printf("Failed to build plan for campaign %d: %v", campaign.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build sending plan",
		})
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"entries": plan,
			"total":   len(plan),
		},
	})
}

// EstimateCampaign returns a rough completion time for the campaign.
func (cc *CampaignController) EstimateCampaign(c *fiber.Ctx) error {
	campaign, errResp := cc.loadCampaign(c)
	if campaign == nil {
		return errResp
	}

	var count int64
	if err := cc.DB.Model(&models.CampaignRecipient{}).
		Where("campaign_id = ? AND sent_at IS NULL", campaign.ID).
		Count(&count).Error; err != nil {
		cc.Logger.Printf("Failed to count recipients: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count recipients",
		})
	}

	rotation, err := rotationFromCampaign(campaign, time.Now().UTC())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	estimate, err := scheduler.EstimateCompletion(int(count), rotation)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	total := time.Duration(estimate.Days)*24*time.Hour +
		time.Duration(estimate.Hours)*time.Hour +
		time.Duration(estimate.Minutes)*time.Minute

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"recipients": count,
			"estimate":   estimate,
			"duration":   utils.FormatDuration(total),
		},
	})
}

func (cc *CampaignController) loadCampaign(c *fiber.Ctx) (*models.Campaign, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid user ID",
		})
	}

	campaignID, err := c.ParamsInt("id")
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid campaign ID",
		})
	}

	var campaign models.Campaign
	if err := cc.DB.Where("id = ? AND user_id = ?", campaignID, userID).First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "campaign not found",
			})
		}
		cc.Logger.Printf("Database error fetching campaign: %v", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return &campaign, nil
}

// rotationFromCampaign maps the campaign's persisted settings onto the
// scheduler's rotation config, anchoring the window at the campaign's
// scheduled date or the reference day.
func rotationFromCampaign(campaign *models.Campaign, ref time.Time) (scheduler.Rotation, error) {
	base := ref
	if campaign.ScheduledAt != nil && campaign.ScheduledAt.After(ref) {
		base = campaign.ScheduledAt.UTC()
	}

	start, err := atTimeOfDay(base, campaign.WindowStart)
	if err != nil {
		return scheduler.Rotation{}, fmt.Errorf("invalid window_start: %v", err)
	}
	end, err := atTimeOfDay(base, campaign.WindowEnd)
	if err != nil {
		return scheduler.Rotation{}, fmt.Errorf("invalid window_end: %v", err)
	}

	return scheduler.Rotation{
		Enabled:          campaign.RotationEnabled,
		SenderIDs:        campaign.RotationSenders,
		DefaultSenderID:  campaign.SenderID,
		EmailsPerAccount: campaign.EmailsPerAccount,
		DelayMinutes:     campaign.DelayMinutes,
		DailyLimit:       campaign.DailyLimit,
		WindowStart:      start,
		WindowEnd:        end,
	}, nil
}

func atTimeOfDay(base time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(base.Year(), base.Month(), base.Day(),
		t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
