package student

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	accounts map[string]Account
	sessions map[string]Session
	resets   map[string]PasswordReset
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts: make(map[string]Account),
		sessions: make(map[string]Session),
		resets:   make(map[string]PasswordReset),
	}
}

func (r *fakeRepo) CreateAccount(_ context.Context, acct Account) error {
	if _, ok := r.accounts[acct.Email]; ok {
		return ErrEmailExists
	}
	r.accounts[acct.Email] = acct
	return nil
}

func (r *fakeRepo) GetAccount(_ context.Context, email string) (Account, error) {
	acct, ok := r.accounts[email]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acct, nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, acct Account) error {
	if _, ok := r.accounts[acct.Email]; !ok {
		return ErrNotFound
	}
	r.accounts[acct.Email] = acct
	return nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, email string, at time.Time) error {
	acct, ok := r.accounts[email]
	if !ok {
		return ErrNotFound
	}
	acct.LastLogin = &at
	r.accounts[email] = acct
	return nil
}

func (r *fakeRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	acct, ok := r.accounts[email]
	if !ok {
		return ErrNotFound
	}
	acct.PasswordHash = passwordHash
	r.accounts[email] = acct
	return nil
}

func (r *fakeRepo) AddPoints(_ context.Context, email string, increment int) (int, error) {
	acct, ok := r.accounts[email]
	if !ok {
		return 0, ErrNotFound
	}
	acct.Points += increment
	r.accounts[email] = acct
	return acct.Points, nil
}

func (r *fakeRepo) StudentsByBranch(_ context.Context, branch string) ([]Account, error) {
	var out []Account
	for _, acct := range r.accounts {
		if acct.Branch == branch {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateSession(_ context.Context, sess Session) error {
	r.sessions[sess.Token] = sess
	return nil
}

func (r *fakeRepo) GetSession(_ context.Context, token string) (Session, error) {
	sess, ok := r.sessions[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (r *fakeRepo) DeleteSession(_ context.Context, token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *fakeRepo) DeleteSessionsByEmail(_ context.Context, email string) (int64, error) {
	var n int64
	for token, sess := range r.sessions {
		if sess.StudentEmail == email {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) LoggedInEmails(_ context.Context, branch string, now time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, sess := range r.sessions {
		if sess.ExpiresAt.After(now) {
			acct, ok := r.accounts[sess.StudentEmail]
			if ok && acct.Branch == branch && !seen[acct.Email] {
				seen[acct.Email] = true
				out = append(out, acct.Email)
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for token, sess := range r.sessions {
		if !sess.ExpiresAt.After(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) CreateReset(_ context.Context, reset PasswordReset) error {
	r.resets[reset.Token] = reset
	return nil
}

func (r *fakeRepo) GetReset(_ context.Context, token string) (PasswordReset, error) {
	reset, ok := r.resets[token]
	if !ok {
		return PasswordReset{}, ErrNotFound
	}
	return reset, nil
}

func (r *fakeRepo) MarkResetUsed(_ context.Context, token string) error {
	reset, ok := r.resets[token]
	if !ok {
		return ErrNotFound
	}
	reset.Used = true
	r.resets[token] = reset
	return nil
}

func (r *fakeRepo) DeleteDeadResets(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for token, reset := range r.resets {
		if reset.Used || !reset.ExpiresAt.After(now) {
			delete(r.resets, token)
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, "test-salt", time.Hour, 30*time.Minute)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	acct, sess, err := svc.Register(ctx, RegisterInput{
		Email:    "Jamie@Example.com",
		Password: "secret123",
		Branch:   "Mechanical",
		FullName: "Jamie Doe",
	})
	if err != nil {
		t.Fatal(err)
	}
	if acct.Email != "jamie@example.com" {
		t.Errorf("email = %q, want normalized lowercase", acct.Email)
	}
	if acct.Branch != BranchMechanical {
		t.Errorf("branch = %q, want %q", acct.Branch, BranchMechanical)
	}
	if sess == nil || sess.Token == "" {
		t.Fatal("register did not open a session")
	}

	got, _, err := svc.Login(ctx, "jamie@example.com", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLogin == nil {
		t.Error("login did not stamp last_login")
	}

	_, _, err = svc.Login(ctx, "jamie@example.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	_, _, err = svc.Login(ctx, "nobody@example.com", "secret123")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRejectsUnknownBranch(t *testing.T) {
	svc := newTestService(newFakeRepo())
	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "a@example.com",
		Password: "secret123",
		Branch:   "astrology",
		FullName: "A",
	})
	if !errors.Is(err, ErrInvalidBranch) {
		t.Fatalf("err = %v, want ErrInvalidBranch", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()
	in := RegisterInput{Email: "a@example.com", Password: "secret123", Branch: "civil", FullName: "A"}
	if _, _, err := svc.Register(ctx, in); err != nil {
		t.Fatal(err)
	}
	_, _, err := svc.Register(ctx, in)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
}

func TestVerifyExpiredSessionLooksLikeMissing(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, sess, err := svc.Register(ctx, RegisterInput{
		Email: "a@example.com", Password: "secret123", Branch: "civil", FullName: "A",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Verify(ctx, sess.Token); err != nil {
		t.Fatalf("fresh session verify = %v", err)
	}

	// Jump the clock past expiry.
	old := NowFunc
	NowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }
	defer func() { NowFunc = old }()

	_, errExpired := svc.Verify(ctx, sess.Token)
	_, errMissing := svc.Verify(ctx, "no-such-token")
	if !errors.Is(errExpired, ErrInvalidSession) {
		t.Errorf("expired err = %v, want ErrInvalidSession", errExpired)
	}
	if !errors.Is(errMissing, ErrInvalidSession) {
		t.Errorf("missing err = %v, want ErrInvalidSession", errMissing)
	}
}

func TestLogoutInvalidatesImmediately(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	_, sess, err := svc.Register(ctx, RegisterInput{
		Email: "a@example.com", Password: "secret123", Branch: "civil", FullName: "A",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Verify(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("verify after logout = %v, want ErrInvalidSession", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{
		Email: "a@example.com", Password: "oldpass1", Branch: "civil", FullName: "A",
	}); err != nil {
		t.Fatal(err)
	}

	token, err := svc.RequestReset(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetPassword(ctx, token, "newpass1"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svc.Login(ctx, "a@example.com", "newpass1"); err != nil {
		t.Errorf("login with new password = %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", "oldpass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password = %v, want ErrInvalidCredentials", err)
	}

	// The token is single use.
	if err := svc.ResetPassword(ctx, token, "another1"); !errors.Is(err, ErrResetInvalid) {
		t.Errorf("reused token err = %v, want ErrResetInvalid", err)
	}
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{
		Email: "a@example.com", Password: "secret123", Branch: "civil", FullName: "Original Name",
	}); err != nil {
		t.Fatal(err)
	}

	acct, err := svc.UpdateProfile(ctx, "a@example.com", ProfileUpdate{Goals: "Pass the semester"})
	if err != nil {
		t.Fatal(err)
	}
	if acct.FullName != "Original Name" {
		t.Errorf("FullName = %q, want unchanged", acct.FullName)
	}
	if acct.Goals != "Pass the semester" {
		t.Errorf("Goals = %q", acct.Goals)
	}
}

func TestAddPoints(t *testing.T) {
	svc := newTestService(newFakeRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{
		Email: "a@example.com", Password: "secret123", Branch: "civil", FullName: "A",
	}); err != nil {
		t.Fatal(err)
	}

	inc, total, err := svc.AddPoints(ctx, "a@example.com", 9.2)
	if err != nil {
		t.Fatal(err)
	}
	if inc != 10 || total != 10 {
		t.Errorf("AddPoints(9.2) = %d,%d want 10,10", inc, total)
	}

	inc, total, err = svc.AddPoints(ctx, "a@example.com", 7.0)
	if err != nil {
		t.Fatal(err)
	}
	if inc != 8 || total != 18 {
		t.Errorf("AddPoints(7.0) = %d,%d want 8,18", inc, total)
	}

	_, _, err = svc.AddPoints(ctx, "a@example.com", 5.0)
	if !errors.Is(err, ErrScoreTooLow) {
		t.Errorf("AddPoints(5.0) err = %v, want ErrScoreTooLow", err)
	}
}
