package services_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/config"
	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
	"github.com/dftlabs-home/oyoagro-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTokenService(t *testing.T, clock security.Clock) *services.TokenService {
	t.Helper()
	cfg := &config.JWTConfig{
		Secret:            "test-secret-key-minimum-32-characters-long",
		AccessTokenExpiry: "7d",
		Issuer:            "oyoagro-api",
		Audience:          "oyoagro-frontend",
	}
	ts, err := services.NewTokenService(cfg, clock)
	require.NoError(t, err)
	return ts
}

func newAccount(username, email, password, salt string) *models.UserAccount {
	return &models.UserAccount{
		Username:     username,
		Email:        email,
		PasswordHash: security.EncryptPassword(password, salt),
		Salt:         salt,
		Status:       models.StatusEnabled,
	}
}

type authFixture struct {
	svc      *services.AuthService
	repo     *memUserRepo
	notifier *mockNotifier
	clock    *fakeClock
}

func newAuthFixture(t *testing.T, users ...*models.UserAccount) *authFixture {
	t.Helper()
	clock := newFakeClock()
	repo := newMemUserRepo(users...)
	notifier := &mockNotifier{}
	svc := services.NewAuthService(
		repo, newTestTokenService(t, clock), notifier, clock, testLogger(), 5,
	)
	return &authFixture{svc: svc, repo: repo, notifier: notifier, clock: clock}
}

func TestAuthService_Login_Success(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	result, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	stored, _ := f.repo.GetByID(user.ID)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Equal(t, 1, stored.LoginCount)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.APIToken)
	assert.Equal(t, result.Token, *stored.APIToken)
	require.NotNil(t, stored.LastLoginDate)
}

func TestAuthService_Login_ByEmail(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	_, err := f.svc.Login("jadeola@oyoaims.com", "secret-pass")
	require.NoError(t, err)
}

func TestAuthService_Login_UnknownIdentifier(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login("nobody", "whatever")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_Login_WrongPassword_IncrementsCounter(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	_, err := f.svc.Login("jadeola", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	stored, _ := f.repo.GetByID(user.ID)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.False(t, stored.IsLocked)
	assert.Equal(t, 0, f.notifier.lockedCalls)
}

func TestAuthService_Login_LocksAtThreshold(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	for i := 0; i < 4; i++ {
		_, err := f.svc.Login("jadeola", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}

	// The fifth consecutive failure reports the lock, not bad credentials.
	_, err := f.svc.Login("jadeola", "wrong")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	stored, _ := f.repo.GetByID(user.ID)
	assert.True(t, stored.IsLocked)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
	assert.Equal(t, 1, f.notifier.lockedCalls)
}

func TestAuthService_Login_AtFourFailures_WrongPasswordLocks(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	user.FailedLoginAttempts = 4
	f := newAuthFixture(t, user)

	_, err := f.svc.Login("jadeola", "wrong")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	stored, _ := f.repo.GetByID(user.ID)
	assert.True(t, stored.IsLocked)
}

func TestAuthService_Login_SuccessResetsCounter(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	for i := 0; i < 3; i++ {
		_, _ = f.svc.Login("jadeola", "wrong")
	}

	_, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)

	stored, _ := f.repo.GetByID(user.ID)
	assert.Equal(t, 0, stored.FailedLoginAttempts)

	// Failures after the success start the count again from zero.
	for i := 0; i < 4; i++ {
		_, err := f.svc.Login("jadeola", "wrong")
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
}

func TestAuthService_Login_LockedGatePrecedesPasswordCheck(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	user.IsLocked = true
	user.FailedLoginAttempts = 5
	f := newAuthFixture(t, user)

	// Even the correct password is rejected and the counter stays put.
	_, err := f.svc.Login("jadeola", "secret-pass")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	stored, _ := f.repo.GetByID(user.ID)
	assert.Equal(t, 5, stored.FailedLoginAttempts)
}

func TestAuthService_Login_DisabledAccount(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	user.Status = models.StatusDisabled
	f := newAuthFixture(t, user)

	_, err := f.svc.Login("jadeola", "secret-pass")
	assert.ErrorIs(t, err, services.ErrAccountDisabled)
}

func TestAuthService_Login_MissingSecretTreatedAsMismatchlessFailure(t *testing.T) {
	user := &models.UserAccount{
		Username: "jadeola",
		Email:    "jadeola@oyoaims.com",
		Status:   models.StatusEnabled,
	}
	f := newAuthFixture(t, user)

	_, err := f.svc.Login("jadeola", "anything")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// No secret to compare against means no attempt was counted.
	stored, _ := f.repo.GetByID(user.ID)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
}

func TestAuthService_Login_NotificationFailureDoesNotUnlock(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	user.FailedLoginAttempts = 4
	f := newAuthFixture(t, user)
	f.notifier.failWith = errors.New("smtp down")

	_, err := f.svc.Login("jadeola", "wrong")
	assert.ErrorIs(t, err, services.ErrAccountLocked)

	stored, _ := f.repo.GetByID(user.ID)
	assert.True(t, stored.IsLocked)
}

func TestAuthService_Login_PersistenceFailureIsHardFailure(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)
	f.repo.failIncrement = true

	_, err := f.svc.Login("jadeola", "wrong")
	require.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, services.ErrAccountLocked)
}

func TestAuthService_VerifyToken_RoundTrip(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	result, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)

	claims, verified, err := f.svc.VerifyToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "jadeola", claims.Username)
	assert.Equal(t, user.ID, verified.ID)
}

func TestAuthService_VerifyToken_GarbageRejected(t *testing.T) {
	f := newAuthFixture(t)

	_, _, err := f.svc.VerifyToken("not-a-jwt")
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}

func TestAuthService_VerifyToken_SupersededByNewerLogin(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	first, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)

	// Issued-at granularity is one second; move the clock so the second
	// token differs from the first.
	f.clock.Advance(2 * time.Second)

	second, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// Only the newest token is live.
	_, _, err = f.svc.VerifyToken(first.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	_, _, err = f.svc.VerifyToken(second.Token)
	assert.NoError(t, err)
}

func TestAuthService_VerifyToken_RejectedAfterLogout(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	result, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(user.ID))

	_, _, err = f.svc.VerifyToken(result.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	// Logout is idempotent.
	require.NoError(t, f.svc.Logout(user.ID))
}

func TestAuthService_VerifyToken_RejectedWhenAccountLocked(t *testing.T) {
	user := newAccount("jadeola", "jadeola@oyoaims.com", "secret-pass", "12345")
	f := newAuthFixture(t, user)

	result, err := f.svc.Login("jadeola", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, f.repo.Lock(user.ID))

	_, _, err = f.svc.VerifyToken(result.Token)
	assert.ErrorIs(t, err, services.ErrInvalidToken)
}
