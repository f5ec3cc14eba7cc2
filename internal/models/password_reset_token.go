package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is a single-use, time-limited credential permitting one
// password change. Superseded tokens are invalidated (IsUsed set), never
// deleted, so the ledger keeps an audit trail.
type PasswordResetToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	Token     string     `gorm:"type:varchar(128);uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null;index"`
	IsUsed    bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Active reports whether the token can still be redeemed at the given time.
func (t *PasswordResetToken) Active(now time.Time) bool {
	return !t.IsUsed && t.ExpiresAt.After(now)
}
