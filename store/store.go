package store

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"mailramp/models"
)

// Store is the GORM-backed implementation of the warmup package's
// ProgressStore, StatStore, and MessageStore interfaces.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DaysFor(senderID uint) ([]models.WarmupDay, error) {
	var days []models.WarmupDay
	err := s.db.Where("sender_id = ?", senderID).
		Order("day ASC").
		Find(&days).Error
	return days, err
}

func (s *Store) CreateDays(days []models.WarmupDay) error {
	if len(days) == 0 {
		return nil
	}
	return s.db.Create(&days).Error
}

func (s *Store) SaveDay(day *models.WarmupDay) error {
	return s.db.Save(day).Error
}

func (s *Store) ResetDays(senderID uint) error {
	return s.db.Model(&models.WarmupDay{}).
		Where("sender_id = ?", senderID).
		Updates(map[string]interface{}{
			"sent_today": 0,
			"completed":  false,
		}).Error
}

func (s *Store) StatFor(senderID uint, date time.Time) (*models.WarmupStat, error) {
	var stat models.WarmupStat
	err := s.db.Where("sender_id = ? AND date = ?", senderID, date).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stat, nil
}

func (s *Store) SaveStat(stat *models.WarmupStat) error {
	return s.db.Save(stat).Error
}

func (s *Store) StatsFor(senderID uint) ([]models.WarmupStat, error) {
	var stats []models.WarmupStat
	err := s.db.Where("sender_id = ?", senderID).
		Order("date ASC").
		Find(&stats).Error
	return stats, err
}

func (s *Store) CreateMessage(msg *models.WarmupEmail) error {
	return s.db.Create(msg).Error
}

func (s *Store) MessageByTracking(trackingID string) (*models.WarmupEmail, error) {
	var msg models.WarmupEmail
	err := s.db.Where("tracking_id = ?", trackingID).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Store) SaveMessage(msg *models.WarmupEmail) error {
	return s.db.Save(msg).Error
}
