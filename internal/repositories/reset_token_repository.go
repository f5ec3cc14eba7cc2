package repositories

import (
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResetTokenRepository interface {
	// GetActiveByToken returns the token record iff it is unused and
	// unexpired at the given time, nil otherwise.
	GetActiveByToken(token string, now time.Time) (*models.PasswordResetToken, error)
	// InvalidateAllActive marks every unused token for the account as used.
	// It must complete before a replacement token becomes visible so that
	// two tokens are never redeemable at once.
	InvalidateAllActive(userID uuid.UUID, now time.Time) error
	Create(token *models.PasswordResetToken) error
	MarkUsed(id uuid.UUID, usedAt time.Time) error

	// Transaction runs fn within a database transaction, passing reset-token
	// and user repositories bound to it. Used by reset issuance and
	// redemption, which must mutate both tables atomically.
	Transaction(fn func(tokens ResetTokenRepository, users UserRepository) error) error
}

var _ ResetTokenRepository = (*GormResetTokenRepository)(nil)

// GormResetTokenRepository implements ResetTokenRepository using GORM.
type GormResetTokenRepository struct {
	db *gorm.DB
}

func NewResetTokenRepository(db *gorm.DB) *GormResetTokenRepository {
	return &GormResetTokenRepository{db: db}
}

func (r *GormResetTokenRepository) GetActiveByToken(token string, now time.Time) (*models.PasswordResetToken, error) {
	var record models.PasswordResetToken
	err := r.db.
		Where("token = ? AND is_used = false AND expires_at > ?", token, now).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *GormResetTokenRepository) InvalidateAllActive(userID uuid.UUID, now time.Time) error {
	return r.db.Model(&models.PasswordResetToken{}).
		Where("user_id = ? AND is_used = false", userID).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": now,
		}).Error
}

func (r *GormResetTokenRepository) Create(token *models.PasswordResetToken) error {
	return r.db.Create(token).Error
}

func (r *GormResetTokenRepository) MarkUsed(id uuid.UUID, usedAt time.Time) error {
	return r.db.Model(&models.PasswordResetToken{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_used": true,
			"used_at": usedAt,
		}).Error
}

func (r *GormResetTokenRepository) Transaction(fn func(tokens ResetTokenRepository, users UserRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormResetTokenRepository{db: tx}, &GormUserRepository{db: tx})
	})
}
