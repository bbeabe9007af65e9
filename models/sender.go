package models

import (
	"time"

	"gorm.io/gorm"
)

// Sender represents a mailbox that can dispatch campaign and warmup email.
// The warmup engine reads identity/verification fields and owns only the
// warmup progress and scheduling columns.
type Sender struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	// Basic identification
	Name      string `gorm:"not null" json:"name"`
	FromEmail string `gorm:"not null" json:"from_email"`
	FromName  string `gorm:"not null" json:"from_name"`

	// ========= SMTP Configuration =========
	SMTPHost     string `gorm:"not null" json:"smtp_host"`
	SMTPPort     int    `gorm:"not null" json:"smtp_port"`
	SMTPUsername string `gorm:"not null" json:"smtp_username"`
	SMTPPassword string `gorm:"not null" json:"-"`          // Encrypted in application layer
	Encryption   string `gorm:"not null" json:"encryption"` // SSL, TLS, STARTTLS

	// ========= IMAP Configuration =========
	IMAPHost       string `json:"imap_host"`
	IMAPPort       int    `json:"imap_port" gorm:"default:993"`
	IMAPUsername   string `json:"imap_username"`
	IMAPPassword   string `json:"-"` // Encrypted in application layer
	IMAPEncryption string `json:"imap_encryption" gorm:"default:'SSL'"`
	IMAPMailbox    string `json:"imap_mailbox" gorm:"default:'INBOX'"`

	// ========= Warmup State =========
	WarmupEnabled   bool       `gorm:"default:false" json:"warmup_enabled"`
	WarmupStartedAt *time.Time `json:"warmup_started_at"`
	WarmupDoneAt    *time.Time `json:"warmup_done_at"`
	NextWarmupAt    *time.Time `gorm:"index" json:"next_warmup_at"` // durable schedule, survives restarts

	// ========= Status & Verification =========
	SMTPVerified bool       `json:"smtp_verified" gorm:"default:false"`
	IMAPVerified bool       `json:"imap_verified" gorm:"default:false"`
	LastTestedAt *time.Time `json:"last_tested_at"`
	LastError    *string    `json:"last_error"`

	// ========= Usage Metrics =========
	DailyLimit int `gorm:"default:500" json:"daily_limit"`
	SentToday  int `gorm:"default:0" json:"sent_today"`
	TotalSent  int `gorm:"default:0" json:"total_sent"`
}

// Sanitize strips credentials before the sender is rendered in a response.
func (s *Sender) Sanitize() {
	s.SMTPPassword = ""
	s.IMAPPassword = ""
}
