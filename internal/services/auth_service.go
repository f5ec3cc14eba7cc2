package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/repositories"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
	"github.com/google/uuid"
)

// SessionCache is an optional fast-path lookup of token -> account id. A hit
// never bypasses the database check; a nil cache disables the fast path.
type SessionCache interface {
	Set(token string, userID uuid.UUID, ttl time.Duration) error
	Get(token string) (uuid.UUID, bool, error)
	Invalidate(token string) error
}

// AuthService implements the login/lockout state machine: credential
// verification through the reversible password codec, failed-attempt
// counting with automatic lock at the configured threshold, token issuance
// on success, and exact-match revocation on verify.
type AuthService struct {
	users            repositories.UserRepository
	tokens           *TokenService
	notifier         NotificationSender
	cache            SessionCache
	clock            security.Clock
	logger           *slog.Logger
	lockoutThreshold int
}

func NewAuthService(
	users repositories.UserRepository,
	tokens *TokenService,
	notifier NotificationSender,
	clock security.Clock,
	logger *slog.Logger,
	lockoutThreshold int,
) *AuthService {
	if lockoutThreshold <= 0 {
		lockoutThreshold = 5
	}
	return &AuthService{
		users:            users,
		tokens:           tokens,
		notifier:         notifier,
		clock:            clock,
		logger:           logger,
		lockoutThreshold: lockoutThreshold,
	}
}

// WithSessionCache attaches an optional token cache used by VerifyToken.
func (s *AuthService) WithSessionCache(cache SessionCache) *AuthService {
	s.cache = cache
	return s
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token string
	User  *models.UserAccount
}

// Login authenticates an account by username or email. The gates run in a
// fixed order and short-circuit: unknown identifier, locked, disabled, then
// password comparison. A locked account is rejected before the password is
// examined, so its failed-attempt counter never moves.
func (s *AuthService) Login(identifier, password string) (*LoginResult, error) {
	user, err := s.users.GetByIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		s.logger.Warn("login attempt for unknown identifier", "identifier", identifier)
		return nil, ErrInvalidCredentials
	}

	if user.IsLocked {
		s.logger.Warn("login attempt on locked account", "username", user.Username)
		return nil, ErrAccountLocked
	}

	if !user.Enabled() {
		s.logger.Warn("login attempt on disabled account", "username", user.Username)
		return nil, ErrAccountDisabled
	}

	if user.PasswordHash == "" || user.Salt == "" {
		return nil, ErrInvalidCredentials
	}

	decrypted := security.DecryptPassword(user.PasswordHash, user.Salt)
	if decrypted == "" || decrypted != password {
		return nil, s.registerFailedAttempt(user)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	now := s.clock.Now()
	loginDate := now.Truncate(24 * time.Hour)
	if err := s.users.RecordLogin(user.ID, token, loginDate); err != nil {
		return nil, fmt.Errorf("record login: %w", err)
	}

	user.FailedLoginAttempts = 0
	user.LoginCount++
	user.LastLoginDate = &loginDate
	user.IsActive = true
	user.APIToken = &token

	if s.cache != nil {
		if err := s.cache.Set(token, user.ID, s.tokens.Expiry()); err != nil {
			s.logger.Warn("session cache set failed", "error", err)
		}
	}

	s.logger.Info("successful login", "username", user.Username)
	return &LoginResult{Token: token, User: user}, nil
}

// registerFailedAttempt persists the incremented counter and decides between
// plain rejection and the lock transition. The increment happens atomically
// at the storage layer so concurrent failures cannot lose updates.
func (s *AuthService) registerFailedAttempt(user *models.UserAccount) error {
	attempts, err := s.users.IncrementFailedAttempts(user.ID)
	if err != nil {
		return fmt.Errorf("record failed attempt: %w", err)
	}

	if attempts < s.lockoutThreshold {
		s.logger.Warn("failed login attempt",
			"username", user.Username, "attempts", attempts)
		return ErrInvalidCredentials
	}

	if err := s.users.Lock(user.ID); err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	s.logger.Warn("account locked after repeated failed attempts",
		"username", user.Username, "attempts", attempts)

	// Notification is fire and forget; a mail outage must not unlock anyone.
	if err := s.notifier.SendAccountLocked(user, "too many failed login attempts", s.clock.Now()); err != nil {
		s.logger.Error("account locked notification failed",
			"username", user.Username, "error", err)
	}

	return ErrAccountLocked
}

// Logout clears the stored active token, invalidating the session on the
// server side. Logging out twice is harmless.
func (s *AuthService) Logout(userID uuid.UUID) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	if s.cache != nil && user.APIToken != nil {
		if err := s.cache.Invalidate(*user.APIToken); err != nil {
			s.logger.Warn("session cache invalidate failed", "error", err)
		}
	}

	if err := s.users.ClearToken(userID); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}

	s.logger.Info("user logged out", "username", user.Username)
	return nil
}

// VerifyToken validates a presented bearer token end to end: signature,
// expiry, issuer and audience via the token service, then the account state
// and the single-active-session rule. The token must equal the account's
// stored active token exactly; any newer login or a logout invalidates it.
func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, *models.UserAccount, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}

	// Cache hit only confirms the token was recently issued; the database
	// remains the authority on revocation.
	if s.cache != nil {
		if cachedID, ok, cerr := s.cache.Get(tokenString); cerr == nil && ok && cachedID != userID {
			return nil, nil, ErrInvalidToken
		}
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("look up account: %w", err)
	}
	if user == nil || !user.Enabled() || user.IsLocked {
		return nil, nil, ErrInvalidToken
	}
	if user.APIToken == nil || *user.APIToken != tokenString {
		return nil, nil, ErrInvalidToken
	}

	return claims, user, nil
}
