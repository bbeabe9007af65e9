package models

import (
	"time"

	"gorm.io/gorm"
)

// Probe message statuses. Transitions are forward-only: sent → opened →
// replied; spam is reachable from any state.
const (
	StatusSent    = "sent"
	StatusOpened  = "opened"
	StatusReplied = "replied"
	StatusSpam    = "spam"
)

// WarmupDay is the persisted target/actual pair for one warmup day of one
// sender. One row per (sender, day); Completed is sticky until an explicit
// admin reset.
type WarmupDay struct {
	gorm.Model
	SenderID     uint `gorm:"not null;index:idx_warmup_days_sender_day,unique" json:"sender_id"`
	Day          int  `gorm:"not null;index:idx_warmup_days_sender_day,unique" json:"day"`
	TargetVolume int  `gorm:"not null" json:"target_volume"`
	SentToday    int  `gorm:"default:0" json:"sent_today"`
	Completed    bool `gorm:"default:false" json:"completed"`
}

// WarmupStat aggregates engagement for one sender and one calendar day.
// Rates and the reputation score are recomputed on every upsert.
type WarmupStat struct {
	gorm.Model
	SenderID uint      `gorm:"not null;index:idx_warmup_stats_sender_date,unique" json:"sender_id"`
	Date     time.Time `gorm:"not null;index:idx_warmup_stats_sender_date,unique" json:"date"`

	Sent    int `gorm:"default:0" json:"sent"`
	Opened  int `gorm:"default:0" json:"opened"`
	Replied int `gorm:"default:0" json:"replied"`
	Spam    int `gorm:"default:0" json:"spam"`
	Bounced int `gorm:"default:0" json:"bounced"`

	OpenRate   float64 `gorm:"default:0" json:"open_rate"`
	ReplyRate  float64 `gorm:"default:0" json:"reply_rate"`
	SpamRate   float64 `gorm:"default:0" json:"spam_rate"`
	BounceRate float64 `gorm:"default:0" json:"bounce_rate"`
	Reputation float64 `gorm:"default:0" json:"reputation"`
}

// WarmupEmail is one dispatched probe message. Rows are immutable history
// and never deleted; only Status and the timestamp columns move forward.
type WarmupEmail struct {
	gorm.Model
	SenderID   uint   `gorm:"not null;index" json:"sender_id"`
	PartnerID  uint   `gorm:"not null;index" json:"partner_id"`
	TrackingID string `gorm:"not null;uniqueIndex" json:"tracking_id"`
	Day        int    `gorm:"not null" json:"day"`
	Subject    string `json:"subject"`

	Status    string     `gorm:"default:'sent'" json:"status"`
	SentAt    time.Time  `gorm:"not null" json:"sent_at"`
	OpenedAt  *time.Time `json:"opened_at"`
	RepliedAt *time.Time `json:"replied_at"`
	ReplyBody string     `json:"reply_body"`
}
