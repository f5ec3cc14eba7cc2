package services

import (
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
)

// NotificationSender delivers out-of-band account notifications. Every call
// is best effort: services log delivery failures and never let them fail the
// operation that triggered them.
type NotificationSender interface {
	SendAccountLocked(user *models.UserAccount, reason string, lockedAt time.Time) error
	SendAccountUnlocked(user *models.UserAccount) error
	SendPasswordReset(user *models.UserAccount, resetToken string, expiresAt time.Time) error
	SendWelcome(user *models.UserAccount, tempPassword string) error
}
