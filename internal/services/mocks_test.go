package services_test

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dftlabs-home/oyoagro-api/internal/models"
	"github.com/dftlabs-home/oyoagro-api/internal/repositories"
	"github.com/google/uuid"
)

// fakeClock returns a fixed instant that tests can advance.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// fakeRand returns deterministic values and counts issued tokens so tests can
// tell successive reset tokens apart.
type fakeRand struct {
	tokenSeq int
}

func (r *fakeRand) ResetToken() string {
	r.tokenSeq++
	return fmt.Sprintf("reset-token-%d", r.tokenSeq)
}

func (r *fakeRand) Salt() string {
	return "424242"
}

func (r *fakeRand) TempPassword() string {
	return "98765"
}

// mockNotifier records notification calls.
type mockNotifier struct {
	lockedCalls   int
	unlockedCalls int
	resetCalls    int
	welcomeCalls  int
	lastReset     string
	failWith      error
}

func (n *mockNotifier) SendAccountLocked(user *models.UserAccount, reason string, lockedAt time.Time) error {
	n.lockedCalls++
	return n.failWith
}

func (n *mockNotifier) SendAccountUnlocked(user *models.UserAccount) error {
	n.unlockedCalls++
	return n.failWith
}

func (n *mockNotifier) SendPasswordReset(user *models.UserAccount, resetToken string, expiresAt time.Time) error {
	n.resetCalls++
	n.lastReset = resetToken
	return n.failWith
}

func (n *mockNotifier) SendWelcome(user *models.UserAccount, tempPassword string) error {
	n.welcomeCalls++
	return n.failWith
}

// memUserRepo is an in-memory UserRepository with the same single-row
// mutation semantics as the gorm implementation.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.UserAccount

	failIncrement bool
	failLock      bool
}

func newMemUserRepo(users ...*models.UserAccount) *memUserRepo {
	repo := &memUserRepo{users: make(map[uuid.UUID]*models.UserAccount)}
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		repo.users[u.ID] = u
	}
	return repo
}

func (r *memUserRepo) GetByID(id uuid.UUID) (*models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(username string) (*models.UserAccount, error) {
	return r.find(func(u *models.UserAccount) bool { return u.Username == username })
}

func (r *memUserRepo) GetByEmail(email string) (*models.UserAccount, error) {
	return r.find(func(u *models.UserAccount) bool { return u.Email == email })
}

func (r *memUserRepo) GetByIdentifier(identifier string) (*models.UserAccount, error) {
	return r.find(func(u *models.UserAccount) bool {
		return u.Username == identifier || u.Email == identifier
	})
}

func (r *memUserRepo) find(match func(*models.UserAccount) bool) (*models.UserAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Create(user *models.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) Update(user *models.UserAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) GetAll(limit, offset int) ([]models.UserAccount, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.UserAccount
	for _, u := range r.users {
		all = append(all, *u)
	}
	return all, int64(len(all)), nil
}

func (r *memUserRepo) ExistsByUsername(username string) (bool, error) {
	u, _ := r.GetByUsername(username)
	return u != nil, nil
}

func (r *memUserRepo) ExistsByEmail(email string) (bool, error) {
	u, _ := r.GetByEmail(email)
	return u != nil, nil
}

func (r *memUserRepo) IncrementFailedAttempts(id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failIncrement {
		return 0, errors.New("storage unavailable")
	}
	u, ok := r.users[id]
	if !ok {
		return 0, errors.New("no such user")
	}
	u.FailedLoginAttempts++
	return u.FailedLoginAttempts, nil
}

func (r *memUserRepo) Lock(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLock {
		return errors.New("storage unavailable")
	}
	u, ok := r.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.IsLocked = true
	return nil
}

func (r *memUserRepo) RecordLogin(id uuid.UUID, token string, loginDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.FailedLoginAttempts = 0
	u.LoginCount++
	u.LastLoginDate = &loginDate
	u.IsActive = true
	u.APIToken = &token
	return nil
}

func (r *memUserRepo) ClearToken(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.APIToken = nil
	u.IsActive = false
	return nil
}

func (r *memUserRepo) Transaction(fn func(tx repositories.UserRepository) error) error {
	return fn(r)
}

// memResetTokenRepo is an in-memory ResetTokenRepository.
type memResetTokenRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*models.PasswordResetToken
	users  *memUserRepo
}

func newMemResetTokenRepo(users *memUserRepo) *memResetTokenRepo {
	return &memResetTokenRepo{
		tokens: make(map[uuid.UUID]*models.PasswordResetToken),
		users:  users,
	}
}

func (r *memResetTokenRepo) GetActiveByToken(token string, now time.Time) (*models.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == token && t.Active(now) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memResetTokenRepo) InvalidateAllActive(userID uuid.UUID, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID && !t.IsUsed {
			t.IsUsed = true
			usedAt := now
			t.UsedAt = &usedAt
		}
	}
	return nil
}

func (r *memResetTokenRepo) Create(token *models.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *memResetTokenRepo) MarkUsed(id uuid.UUID, usedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[id]
	if !ok {
		return errors.New("no such token")
	}
	t.IsUsed = true
	at := usedAt
	t.UsedAt = &at
	return nil
}

func (r *memResetTokenRepo) Transaction(fn func(tokens repositories.ResetTokenRepository, users repositories.UserRepository) error) error {
	return fn(r, r.users)
}

func (r *memResetTokenRepo) activeCount(userID uuid.UUID, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tokens {
		if t.UserID == userID && t.Active(now) {
			count++
		}
	}
	return count
}

func (r *memResetTokenRepo) totalCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
