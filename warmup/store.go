package warmup

import (
	"time"

	"mailramp/models"
)

// ProgressStore persists per-sender warmup day records. Implementations
// must return days ordered ascending by day number.
type ProgressStore interface {
	DaysFor(senderID uint) ([]models.WarmupDay, error)
	CreateDays(days []models.WarmupDay) error
	SaveDay(day *models.WarmupDay) error
	ResetDays(senderID uint) error
}

// StatStore persists per-sender daily engagement stats. StatFor returns
// nil (no error) when no row exists for the date yet.
type StatStore interface {
	StatFor(senderID uint, date time.Time) (*models.WarmupStat, error)
	SaveStat(stat *models.WarmupStat) error
	StatsFor(senderID uint) ([]models.WarmupStat, error)
}

// MessageStore persists probe messages. MessageByTracking returns nil
// (no error) when the tracking id is unknown.
type MessageStore interface {
	CreateMessage(msg *models.WarmupEmail) error
	MessageByTracking(trackingID string) (*models.WarmupEmail, error)
	SaveMessage(msg *models.WarmupEmail) error
}
