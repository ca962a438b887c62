package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session records an issued bearer token and its fixed expiry. A session is
// valid only while the row exists and expires_at lies in the future; logout
// deletes the row, the maintenance cleaner reaps the rest.
type Session struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index" json:"expires_at"`

	// Audit-only client metadata, never consulted for authorization.
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
