package models

import (
	"gorm.io/gorm"
)

// User represents an account that owns senders and campaigns. Auth flows
// live behind the API gateway; this service only needs ownership and the
// token version for JWT validation.
type User struct {
	gorm.Model

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         *string `json:"name,omitempty"`
	Timezone     string `gorm:"default:'UTC'" json:"timezone"`
	IsActive     bool   `gorm:"default:true" json:"is_active"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Relations
	Senders   []Sender   `gorm:"foreignKey:UserID" json:"senders,omitempty"`
	Campaigns []Campaign `gorm:"foreignKey:UserID" json:"campaigns,omitempty"`
}
