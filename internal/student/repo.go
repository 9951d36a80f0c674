package student

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository is the persistence contract for student accounts,
// sessions and password resets.
type Repository interface {
	CreateAccount(ctx context.Context, acct Account) error
	GetAccount(ctx context.Context, email string) (Account, error)
	UpdateProfile(ctx context.Context, acct Account) error
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	AddPoints(ctx context.Context, email string, increment int) (int, error)
	StudentsByBranch(ctx context.Context, branch string) ([]Account, error)

	CreateSession(ctx context.Context, sess Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteSessionsByEmail(ctx context.Context, email string) (int64, error)
	LoggedInEmails(ctx context.Context, branch string, now time.Time) ([]string, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreateReset(ctx context.Context, reset PasswordReset) error
	GetReset(ctx context.Context, token string) (PasswordReset, error)
	MarkResetUsed(ctx context.Context, token string) error
	DeleteDeadResets(ctx context.Context, now time.Time) (int64, error)
}

// SQLRepository persists student data in Postgres.
type SQLRepository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// CreateAccount inserts a new student row.
func (r *SQLRepository) CreateAccount(ctx context.Context, acct Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (email, password_hash, branch, full_name, avatar_url, interests, goals, extra_info, points, roll_no, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, acct.Email, acct.PasswordHash, acct.Branch, acct.FullName, acct.AvatarURL,
		acct.Interests, acct.Goals, acct.ExtraInfo, acct.Points, acct.RollNo, acct.CreatedAt)
	if isUniqueViolation(err) {
		return ErrEmailExists
	}
	return err
}

// GetAccount returns an account by email.
func (r *SQLRepository) GetAccount(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, password_hash, branch, full_name, avatar_url, interests, goals, extra_info, points, roll_no, created_at, last_login
		FROM students WHERE email = $1
	`, email)
	return scanAccount(row)
}

// UpdateProfile writes the mutable profile columns.
func (r *SQLRepository) UpdateProfile(ctx context.Context, acct Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE students
		SET full_name = $2, avatar_url = $3, interests = $4, goals = $5, extra_info = $6, roll_no = $7
		WHERE email = $1
	`, acct.Email, acct.FullName, acct.AvatarURL, acct.Interests, acct.Goals, acct.ExtraInfo, acct.RollNo)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateLastLogin stamps the latest successful login.
func (r *SQLRepository) UpdateLastLogin(ctx context.Context, email string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE students SET last_login = $2 WHERE email = $1`, email, at)
	return err
}

// UpdatePassword replaces the stored hash.
func (r *SQLRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AddPoints atomically increments the points counter and returns the new total.
func (r *SQLRepository) AddPoints(ctx context.Context, email string, increment int) (int, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE students SET points = points + $2 WHERE email = $1 RETURNING points
	`, email, increment)
	var total int
	if err := row.Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return total, nil
}

// StudentsByBranch returns the roster for a branch ordered by roll number.
func (r *SQLRepository) StudentsByBranch(ctx context.Context, branch string) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, password_hash, branch, full_name, avatar_url, interests, goals, extra_info, points, roll_no, created_at, last_login
		FROM students WHERE branch = $1
		ORDER BY roll_no NULLS LAST, email
	`, branch)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accts []Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, acct)
	}
	return accts, rows.Err()
}

// CreateSession writes a new session row.
func (r *SQLRepository) CreateSession(ctx context.Context, sess Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO student_sessions (token, student_email, expires_at, created_at)
		VALUES ($1,$2,$3,$4)
	`, sess.Token, sess.StudentEmail, sess.ExpiresAt, sess.CreatedAt)
	return err
}

// GetSession returns a session by token.
func (r *SQLRepository) GetSession(ctx context.Context, token string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, student_email, expires_at, created_at
		FROM student_sessions WHERE token = $1
	`, token)
	var sess Session
	if err := row.Scan(&sess.Token, &sess.StudentEmail, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	return sess, nil
}

// DeleteSession removes a session row.
func (r *SQLRepository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM student_sessions WHERE token = $1`, token)
	return err
}

// DeleteSessionsByEmail removes every session a student holds.
func (r *SQLRepository) DeleteSessionsByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_sessions WHERE student_email = $1`, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LoggedInEmails returns students in a branch holding at least one live session.
func (r *SQLRepository) LoggedInEmails(ctx context.Context, branch string, now time.Time) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT s.email
		FROM students s
		JOIN student_sessions ss ON ss.student_email = s.email
		WHERE s.branch = $1 AND ss.expires_at > $2
		ORDER BY s.email
	`, branch, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// DeleteExpiredSessions purges sessions past their expiry.
func (r *SQLRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM student_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateReset writes a password reset token.
func (r *SQLRepository) CreateReset(ctx context.Context, reset PasswordReset) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO password_resets (token, student_email, expires_at, used)
		VALUES ($1,$2,$3,$4)
	`, reset.Token, reset.StudentEmail, reset.ExpiresAt, reset.Used)
	return err
}

// GetReset returns a reset token row.
func (r *SQLRepository) GetReset(ctx context.Context, token string) (PasswordReset, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, student_email, expires_at, used
		FROM password_resets WHERE token = $1
	`, token)
	var reset PasswordReset
	if err := row.Scan(&reset.Token, &reset.StudentEmail, &reset.ExpiresAt, &reset.Used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PasswordReset{}, ErrNotFound
		}
		return PasswordReset{}, err
	}
	return reset, nil
}

// MarkResetUsed consumes a reset token.
func (r *SQLRepository) MarkResetUsed(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE password_resets SET used = TRUE WHERE token = $1`, token)
	return err
}

// DeleteDeadResets purges used or expired reset tokens.
func (r *SQLRepository) DeleteDeadResets(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE used OR expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (Account, error) {
	var acct Account
	err := row.Scan(&acct.Email, &acct.PasswordHash, &acct.Branch, &acct.FullName, &acct.AvatarURL,
		&acct.Interests, &acct.Goals, &acct.ExtraInfo, &acct.Points, &acct.RollNo, &acct.CreatedAt, &acct.LastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return acct, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
