package admin

import (
	"context"
	"errors"
	"strings"
	"time"

	"drawlab/internal/auth"
)

var (
	ErrNotFound           = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired admin session")
	ErrLockHeld           = errors.New("another admin session is active")
)

// NowFunc is the clock used for expiry decisions; overridable in tests.
var NowFunc = time.Now

// Service implements admin login and session verification on top of
// the single-admin lock.
type Service struct {
	repo       *Repository
	salt       string
	sessionTTL time.Duration
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, salt string, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &Service{repo: repo, salt: salt, sessionTTL: sessionTTL}
}

// Login checks credentials and acquires the single-admin lock. A live
// lock held by someone else fails with ErrLockHeld.
func (s *Service) Login(ctx context.Context, email, password string) (string, time.Time, error) {
	acct, err := s.repo.GetAccount(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, ErrInvalidCredentials
		}
		return "", time.Time{}, err
	}
	if !auth.CheckPassword(acct.PasswordHash, password, s.salt) {
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, err := auth.NewToken()
	if err != nil {
		return "", time.Time{}, err
	}
	now := NowFunc().UTC()
	lock := Lock{Token: token, UserEmail: acct.Email, ExpiresAt: now.Add(s.sessionTTL)}
	if err := s.repo.AcquireLock(ctx, lock, now); err != nil {
		return "", time.Time{}, err
	}
	return token, lock.ExpiresAt, nil
}

// Verify resolves an admin token against the lock row.
func (s *Service) Verify(ctx context.Context, token string) (string, error) {
	lock, err := s.repo.GetLock(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrInvalidSession
		}
		return "", err
	}
	if lock.Token != token || auth.Expired(lock.ExpiresAt, NowFunc()) {
		return "", ErrInvalidSession
	}
	return lock.UserEmail, nil
}

// Check implements auth.SessionChecker for the admin middleware.
func (s *Service) Check(ctx context.Context, token string) (string, error) {
	return s.Verify(ctx, token)
}

// Logout releases the lock held by the token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.ReleaseLock(ctx, token)
}
