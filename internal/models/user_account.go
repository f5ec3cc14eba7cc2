package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account status values. The registry only distinguishes enabled from
// disabled; a disabled account cannot log in but keeps its data.
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

type UserAccount struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username            string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email               string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash        string     `gorm:"type:varchar(512)" json:"-"`
	Salt                string     `gorm:"type:varchar(64)" json:"-"`
	Status              int        `gorm:"not null;default:1" json:"status"`
	IsActive            bool       `gorm:"not null;default:false" json:"is_active"`
	IsLocked            bool       `gorm:"not null;default:false" json:"is_locked"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LoginCount          int        `gorm:"not null;default:0" json:"login_count"`
	LastLoginDate       *time.Time `gorm:"type:date" json:"last_login_date"`
	LastPasswordReset   *time.Time `json:"-"`
	APIToken            *string    `gorm:"type:text" json:"-"`
	ResetToken          *string    `gorm:"type:varchar(128)" json:"-"`
	ResetTokenExpires   *time.Time `json:"-"`
	CreatedAt           time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (UserAccount) TableName() string {
	return "user_accounts"
}

// BeforeCreate hook to generate UUID
func (u *UserAccount) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Enabled reports whether the account may authenticate at all.
func (u *UserAccount) Enabled() bool {
	return u.Status == StatusEnabled
}
