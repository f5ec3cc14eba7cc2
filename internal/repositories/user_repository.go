package repositories

import (
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	GetByID(id uuid.UUID) (*models.UserAccount, error)
	GetByUsername(username string) (*models.UserAccount, error)
	GetByEmail(email string) (*models.UserAccount, error)
	// GetByIdentifier resolves a login identifier that may be either a
	// username or an email address.
	GetByIdentifier(identifier string) (*models.UserAccount, error)
	Create(user *models.UserAccount) error
	Update(user *models.UserAccount) error
	GetAll(limit, offset int) ([]models.UserAccount, int64, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)

	// IncrementFailedAttempts bumps the failed-login counter in a single
	// UPDATE ... RETURNING statement and reports the new value, so two
	// concurrent failed logins cannot both observe the pre-increment count.
	IncrementFailedAttempts(id uuid.UUID) (int, error)
	// Lock marks the account locked. Locked is terminal until an explicit
	// unlock or a successful password-reset redemption.
	Lock(id uuid.UUID) error
	// RecordLogin applies the success-path mutations atomically: counter
	// reset, login count bump, last-login date and the new active token.
	RecordLogin(id uuid.UUID, token string, loginDate time.Time) error
	// ClearToken drops the stored active token (logout). Idempotent.
	ClearToken(id uuid.UUID) error

	// Transaction runs fn within a database transaction, passing a
	// repository bound to it.
	Transaction(fn func(tx UserRepository) error) error
}

var _ UserRepository = (*GormUserRepository)(nil)

// GormUserRepository implements UserRepository using GORM.
type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(id uuid.UUID) (*models.UserAccount, error) {
	return r.getOne("id = ?", id)
}

func (r *GormUserRepository) GetByUsername(username string) (*models.UserAccount, error) {
	return r.getOne("username = ?", username)
}

func (r *GormUserRepository) GetByEmail(email string) (*models.UserAccount, error) {
	return r.getOne("email = ?", email)
}

func (r *GormUserRepository) GetByIdentifier(identifier string) (*models.UserAccount, error) {
	return r.getOne("username = ? OR email = ?", identifier, identifier)
}

func (r *GormUserRepository) getOne(query string, args ...interface{}) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := r.db.First(&user, append([]interface{}{query}, args...)...).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Create(user *models.UserAccount) error {
	return r.db.Create(user).Error
}

func (r *GormUserRepository) Update(user *models.UserAccount) error {
	return r.db.Save(user).Error
}

func (r *GormUserRepository) GetAll(limit, offset int) ([]models.UserAccount, int64, error) {
	var users []models.UserAccount
	var count int64

	if err := r.db.Model(&models.UserAccount{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.Limit(limit).Offset(offset).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, count, nil
}

func (r *GormUserRepository) ExistsByUsername(username string) (bool, error) {
	return r.exists("username = ?", username)
}

func (r *GormUserRepository) ExistsByEmail(email string) (bool, error) {
	return r.exists("email = ?", email)
}

func (r *GormUserRepository) exists(query string, args ...interface{}) (bool, error) {
	var count int64
	if err := r.db.Model(&models.UserAccount{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) IncrementFailedAttempts(id uuid.UUID) (int, error) {
	var attempts int
	err := r.db.Raw(
		`UPDATE user_accounts
		 SET failed_login_attempts = failed_login_attempts + 1, updated_at = NOW()
		 WHERE id = ?
		 RETURNING failed_login_attempts`, id,
	).Scan(&attempts).Error
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

func (r *GormUserRepository) Lock(id uuid.UUID) error {
	return r.db.Model(&models.UserAccount{}).
		Where("id = ?", id).
		Update("is_locked", true).Error
}

func (r *GormUserRepository) RecordLogin(id uuid.UUID, token string, loginDate time.Time) error {
	return r.db.Model(&models.UserAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"login_count":           gorm.Expr("login_count + 1"),
			"last_login_date":       loginDate,
			"is_active":             true,
			"api_token":             token,
		}).Error
}

func (r *GormUserRepository) ClearToken(id uuid.UUID) error {
	return r.db.Model(&models.UserAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"api_token": nil,
			"is_active": false,
		}).Error
}

func (r *GormUserRepository) Transaction(fn func(tx UserRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormUserRepository{db: tx})
	})
}
