package services

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/repositories"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
	"github.com/google/uuid"
)

// UserService covers the administrative account surface: provisioning,
// listing, and the manual lock/unlock/reset controls that resolve a lockout.
type UserService struct {
	users    repositories.UserRepository
	rand     security.RandomSource
	clock    security.Clock
	notifier NotificationSender
	logger   *slog.Logger
}

func NewUserService(
	users repositories.UserRepository,
	rand security.RandomSource,
	clock security.Clock,
	notifier NotificationSender,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:    users,
		rand:     rand,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
	}
}

// CreatedUser is returned from CreateUser. The temporary password is only
// ever handed to the notification path, never stored in the clear.
type CreatedUser struct {
	User         *models.UserAccount
	TempPassword string
}

// CreateUser provisions an account with a generated temporary password. The
// username is derived from the email local part, matching how the registry
// has always assigned officer usernames.
func (s *UserService) CreateUser(email string) (*CreatedUser, error) {
	username := email
	if at := strings.Index(email, "@"); at > 0 {
		username = email[:at]
	}

	exists, err := s.users.ExistsByUsername(username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	exists, err = s.users.ExistsByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	tempPassword := s.rand.TempPassword()
	salt := s.rand.Salt()

	now := s.clock.Now()
	user := &models.UserAccount{
		Username:     username,
		Email:        email,
		PasswordHash: security.EncryptPassword(tempPassword, salt),
		Salt:         salt,
		Status:       models.StatusEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info("user account created", "username", username)

	if err := s.notifier.SendWelcome(user, tempPassword); err != nil {
		s.logger.Error("welcome email failed", "username", username, "error", err)
	}

	return &CreatedUser{User: user, TempPassword: tempPassword}, nil
}

func (s *UserService) GetAll(limit, offset int) ([]models.UserAccount, int64, error) {
	return s.users.GetAll(limit, offset)
}

func (s *UserService) GetByID(id uuid.UUID) (*models.UserAccount, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// LockUser locks an account by administrative action.
func (s *UserService) LockUser(id uuid.UUID) error {
	user, err := s.users.GetByID(id)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := s.users.Lock(id); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	s.logger.Info("user locked by administrator", "username", user.Username)

	if err := s.notifier.SendAccountLocked(user, "locked by administrator", s.clock.Now()); err != nil {
		s.logger.Error("lock notification failed", "username", user.Username, "error", err)
	}
	return nil
}

// UnlockUser clears the lock and resets the failed-attempt counter in the
// same write; an unlocked account always starts from a clean slate.
func (s *UserService) UnlockUser(id uuid.UUID) error {
	user, err := s.users.GetByID(id)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	user.IsLocked = false
	user.FailedLoginAttempts = 0
	user.UpdatedAt = s.clock.Now()
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	s.logger.Info("user unlocked by administrator", "username", user.Username)

	if err := s.notifier.SendAccountUnlocked(user); err != nil {
		s.logger.Error("unlock notification failed", "username", user.Username, "error", err)
	}
	return nil
}

// ResetUserPassword installs an administrator-chosen password with a fresh
// salt and clears any lockout state.
func (s *UserService) ResetUserPassword(id uuid.UUID, newPassword string) error {
	user, err := s.users.GetByID(id)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	now := s.clock.Now()
	salt := s.rand.Salt()
	user.Salt = salt
	user.PasswordHash = security.EncryptPassword(newPassword, salt)
	user.FailedLoginAttempts = 0
	user.IsLocked = false
	user.LastPasswordReset = &now
	user.UpdatedAt = now

	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	s.logger.Info("password reset by administrator", "username", user.Username)
	return nil
}
