package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/repositories"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
)

// PasswordResetService manages the self-service reset-token ledger: at most
// one redeemable token per account, single-use redemption, and
// invalidate-before-issue so two tokens are never valid at once.
type PasswordResetService struct {
	resetTokens repositories.ResetTokenRepository
	users       repositories.UserRepository
	rand        security.RandomSource
	clock       security.Clock
	notifier    NotificationSender
	logger      *slog.Logger
	tokenExpiry time.Duration
}

func NewPasswordResetService(
	resetTokens repositories.ResetTokenRepository,
	users repositories.UserRepository,
	rand security.RandomSource,
	clock security.Clock,
	notifier NotificationSender,
	logger *slog.Logger,
	tokenExpiry time.Duration,
) *PasswordResetService {
	if tokenExpiry == 0 {
		tokenExpiry = 24 * time.Hour
	}
	return &PasswordResetService{
		resetTokens: resetTokens,
		users:       users,
		rand:        rand,
		clock:       clock,
		notifier:    notifier,
		logger:      logger,
		tokenExpiry: tokenExpiry,
	}
}

// RequestReset issues a reset token for the account registered under the
// email. Unknown or disabled addresses are a silent no-op: the caller always
// sees success, so the endpoint cannot be used to probe which emails exist.
func (s *PasswordResetService) RequestReset(email string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if user == nil || !user.Enabled() {
		s.logger.Info("password reset requested for unknown or disabled email", "email", email)
		return nil
	}

	now := s.clock.Now()
	token := s.rand.ResetToken()
	expiresAt := now.Add(s.tokenExpiry)

	err = s.resetTokens.Transaction(func(tokens repositories.ResetTokenRepository, users repositories.UserRepository) error {
		// Prior tokens go dead before the new one is written; the ledger
		// never holds two redeemable tokens for one account.
		if err := tokens.InvalidateAllActive(user.ID, now); err != nil {
			return err
		}
		record := &models.PasswordResetToken{
			UserID:    user.ID,
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}
		if err := tokens.Create(record); err != nil {
			return err
		}

		user.ResetToken = &token
		user.ResetTokenExpires = &expiresAt
		user.UpdatedAt = now
		return users.Update(user)
	})
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	s.logger.Info("password reset token issued", "username", user.Username)

	if err := s.notifier.SendPasswordReset(user, token, expiresAt); err != nil {
		s.logger.Error("password reset email failed",
			"username", user.Username, "error", err)
	}

	return nil
}

// ValidateToken reports whether a reset token is currently redeemable.
func (s *PasswordResetService) ValidateToken(token string) (bool, error) {
	record, err := s.resetTokens.GetActiveByToken(token, s.clock.Now())
	if err != nil {
		return false, fmt.Errorf("look up reset token: %w", err)
	}
	return record != nil, nil
}

// RedeemReset consumes a reset token and installs the new password. The
// account comes back fully usable: fresh salt and secret, counter cleared,
// lock cleared. Token and account are written in one transaction; a token is
// never burned without the password change landing, and vice versa.
func (s *PasswordResetService) RedeemReset(token, newPassword string) error {
	now := s.clock.Now()

	err := s.resetTokens.Transaction(func(tokens repositories.ResetTokenRepository, users repositories.UserRepository) error {
		record, err := tokens.GetActiveByToken(token, now)
		if err != nil {
			return fmt.Errorf("look up reset token: %w", err)
		}
		if record == nil {
			return ErrInvalidOrExpiredToken
		}

		user, err := users.GetByID(record.UserID)
		if err != nil {
			return fmt.Errorf("look up account: %w", err)
		}
		if user == nil {
			return ErrInvalidOrExpiredToken
		}

		salt := s.rand.Salt()
		user.Salt = salt
		user.PasswordHash = security.EncryptPassword(newPassword, salt)
		user.FailedLoginAttempts = 0
		user.IsLocked = false
		user.LastPasswordReset = &now
		user.ResetToken = nil
		user.ResetTokenExpires = nil
		user.UpdatedAt = now
		if err := users.Update(user); err != nil {
			return fmt.Errorf("update account: %w", err)
		}

		if err := tokens.MarkUsed(record.ID, now); err != nil {
			return fmt.Errorf("mark token used: %w", err)
		}

		s.logger.Info("password reset redeemed", "username", user.Username)
		return nil
	})

	return err
}
