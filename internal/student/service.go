package student

import (
	"context"
	"errors"
	"strings"
	"time"

	"drawlab/internal/auth"
)

var (
	ErrNotFound           = errors.New("student not found")
	ErrEmailExists        = errors.New("a student with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidBranch      = errors.New("unknown branch")
	ErrScoreTooLow        = errors.New("score does not qualify for points")
	ErrResetInvalid       = errors.New("invalid or expired reset token")
)

// NowFunc is the clock used for expiry decisions; overridable in tests.
var NowFunc = time.Now

// Service implements the student auth and profile actions.
type Service struct {
	repo          Repository
	salt          string
	sessionTTL    time.Duration
	resetTokenTTL time.Duration
}

// NewService creates a service backed by a repository.
func NewService(repo Repository, salt string, sessionTTL, resetTokenTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &Service{repo: repo, salt: salt, sessionTTL: sessionTTL, resetTokenTTL: resetTokenTTL}
}

// Register creates an account and opens a first session. Account and
// session are two separate writes; if the session write fails the
// account still exists and the student can log in normally, so the
// session is returned as nil rather than failing registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, *Session, error) {
	branch := strings.ToLower(strings.TrimSpace(in.Branch))
	if !ValidBranch(branch) {
		return Account{}, nil, ErrInvalidBranch
	}

	acct := Account{
		Email:        normalizeEmail(in.Email),
		PasswordHash: auth.HashPassword(in.Password, s.salt),
		Branch:       branch,
		FullName:     strings.TrimSpace(in.FullName),
		RollNo:       in.RollNo,
		CreatedAt:    NowFunc().UTC(),
	}
	if err := s.repo.CreateAccount(ctx, acct); err != nil {
		return Account{}, nil, err
	}

	sess, err := s.startSession(ctx, acct.Email)
	if err != nil {
		return acct, nil, nil
	}
	return acct, &sess, nil
}

// Login checks the (email, hash) pair, stamps last_login and issues a
// new session. Existing sessions stay valid; multiple concurrent
// sessions per student are allowed.
func (s *Service) Login(ctx context.Context, email, password string) (Account, Session, error) {
	acct, err := s.repo.GetAccount(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, Session{}, ErrInvalidCredentials
		}
		return Account{}, Session{}, err
	}
	if !auth.CheckPassword(acct.PasswordHash, password, s.salt) {
		return Account{}, Session{}, ErrInvalidCredentials
	}

	now := NowFunc().UTC()
	if err := s.repo.UpdateLastLogin(ctx, acct.Email, now); err != nil {
		return Account{}, Session{}, err
	}
	acct.LastLogin = &now

	sess, err := s.startSession(ctx, acct.Email)
	if err != nil {
		return Account{}, Session{}, err
	}
	return acct, sess, nil
}

// Verify resolves a token to the current profile. Expired sessions are
// indistinguishable from missing ones.
func (s *Service) Verify(ctx context.Context, token string) (Account, error) {
	sess, err := s.repo.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidSession
		}
		return Account{}, err
	}
	if auth.Expired(sess.ExpiresAt, NowFunc()) {
		return Account{}, ErrInvalidSession
	}
	return s.repo.GetAccount(ctx, sess.StudentEmail)
}

// Check implements auth.SessionChecker for the student middleware.
func (s *Service) Check(ctx context.Context, token string) (string, error) {
	acct, err := s.Verify(ctx, token)
	if err != nil {
		return "", err
	}
	return acct.Email, nil
}

// Logout deletes the session row. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// RequestReset issues a reset token for an account. The token is
// returned to the caller directly; the original system had no
// out-of-band delivery.
func (s *Service) RequestReset(ctx context.Context, email string) (string, error) {
	acct, err := s.repo.GetAccount(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	token, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	reset := PasswordReset{
		Token:        token,
		StudentEmail: acct.Email,
		ExpiresAt:    NowFunc().UTC().Add(s.resetTokenTTL),
	}
	if err := s.repo.CreateReset(ctx, reset); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token and sets a new password hash.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.repo.GetReset(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrResetInvalid
		}
		return err
	}
	if reset.Used || auth.Expired(reset.ExpiresAt, NowFunc()) {
		return ErrResetInvalid
	}
	if err := s.repo.UpdatePassword(ctx, reset.StudentEmail, auth.HashPassword(newPassword, s.salt)); err != nil {
		return err
	}
	return s.repo.MarkResetUsed(ctx, token)
}

// GetProfile returns the account for an email.
func (s *Service) GetProfile(ctx context.Context, email string) (Account, error) {
	return s.repo.GetAccount(ctx, normalizeEmail(email))
}

// UpdateProfile applies the provided profile fields; empty strings
// keep the current values.
func (s *Service) UpdateProfile(ctx context.Context, email string, upd ProfileUpdate) (Account, error) {
	acct, err := s.repo.GetAccount(ctx, normalizeEmail(email))
	if err != nil {
		return Account{}, err
	}
	if v := strings.TrimSpace(upd.FullName); v != "" {
		acct.FullName = v
	}
	if v := strings.TrimSpace(upd.AvatarURL); v != "" {
		acct.AvatarURL = v
	}
	if v := strings.TrimSpace(upd.Interests); v != "" {
		acct.Interests = v
	}
	if v := strings.TrimSpace(upd.Goals); v != "" {
		acct.Goals = v
	}
	if v := strings.TrimSpace(upd.ExtraInfo); v != "" {
		acct.ExtraInfo = v
	}
	if upd.RollNo != nil {
		acct.RollNo = upd.RollNo
	}
	if err := s.repo.UpdateProfile(ctx, acct); err != nil {
		return Account{}, err
	}
	return acct, nil
}

// AddPoints awards points for a passing score and returns the
// increment and the new total. Points only ever go up.
func (s *Service) AddPoints(ctx context.Context, email string, score float64) (int, int, error) {
	increment := PointsForScore(score)
	if increment == 0 {
		return 0, 0, ErrScoreTooLow
	}
	total, err := s.repo.AddPoints(ctx, normalizeEmail(email), increment)
	if err != nil {
		return 0, 0, err
	}
	return increment, total, nil
}

// StudentsByBranch returns the roster for a branch.
func (s *Service) StudentsByBranch(ctx context.Context, branch string) ([]Account, error) {
	return s.repo.StudentsByBranch(ctx, strings.ToLower(strings.TrimSpace(branch)))
}

// LoggedInStudents returns branch students holding a live session.
func (s *Service) LoggedInStudents(ctx context.Context, branch string) ([]string, error) {
	return s.repo.LoggedInEmails(ctx, strings.ToLower(strings.TrimSpace(branch)), NowFunc())
}

// RemoveSessions force-logs-out every session a student holds.
func (s *Service) RemoveSessions(ctx context.Context, email string) (int64, error) {
	return s.repo.DeleteSessionsByEmail(ctx, normalizeEmail(email))
}

func (s *Service) startSession(ctx context.Context, email string) (Session, error) {
	token, err := auth.NewToken()
	if err != nil {
		return Session{}, err
	}
	now := NowFunc().UTC()
	sess := Session{
		Token:        token,
		StudentEmail: email,
		ExpiresAt:    now.Add(s.sessionTTL),
		CreatedAt:    now,
	}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
