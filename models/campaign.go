package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign represents an outbound campaign. The scheduler reads the
// rotation settings; recipient storage and content live elsewhere.
type Campaign struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name    string `gorm:"not null" json:"name"`
	Subject string `json:"subject"`

	Status      string     `gorm:"default:'draft'" json:"status"` // draft, scheduled, sending, sent, paused
	ScheduledAt *time.Time `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	// Default sender when rotation is off
	SenderID uint `gorm:"index" json:"sender_id"`

	// ========= Rotation Settings =========
	RotationEnabled  bool   `gorm:"default:false" json:"rotation_enabled"`
	RotationSenders  []uint `gorm:"type:jsonb;serializer:json" json:"rotation_senders"`
	EmailsPerAccount int    `gorm:"default:30" json:"emails_per_account"`
	DelayMinutes     int    `gorm:"default:5" json:"delay_minutes"`
	DailyLimit       int    `gorm:"default:200" json:"daily_limit"`
	WindowStart      string `gorm:"default:'09:00'" json:"window_start"` // HH:MM, campaign-local
	WindowEnd        string `gorm:"default:'17:00'" json:"window_end"`

	// Statistics (denormalized for performance)
	TotalRecipients int `gorm:"default:0" json:"total_recipients"`
	SentCount       int `gorm:"default:0" json:"sent_count"`

	// Relations
	Recipients []CampaignRecipient `gorm:"foreignKey:CampaignID" json:"recipients,omitempty"`
}

// CampaignRecipient joins a campaign to one destination address.
type CampaignRecipient struct {
	gorm.Model
	CampaignID uint   `gorm:"not null;index" json:"campaign_id"`
	Email      string `gorm:"not null" json:"email"`
	Name       string `json:"name"`

	SentAt   *time.Time `json:"sent_at"`
	SenderID *uint      `json:"sender_id"` // account the plan assigned
}
