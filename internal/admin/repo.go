package admin

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Account is a registered admin.
type Account struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Lock is the single admin session. At most one row exists (id = 1);
// a live row means an admin is logged in.
type Lock struct {
	Token     string
	UserEmail string
	ExpiresAt time.Time
}

// Repository persists admin accounts and the session lock in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetAccount returns an admin by email.
func (r *Repository) GetAccount(ctx context.Context, email string) (Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, password_hash, full_name, created_at FROM admins WHERE email = $1
	`, email)
	var acct Account
	if err := row.Scan(&acct.Email, &acct.PasswordHash, &acct.FullName, &acct.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return acct, nil
}

// AcquireLock takes the single-admin lock in one conditional upsert.
// The write only lands when no row exists or the stored session has
// expired, so two near-simultaneous logins cannot both win.
func (r *Repository) AcquireLock(ctx context.Context, lock Lock, now time.Time) error {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO admin_lock (id, token, user_email, expires_at)
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET token = EXCLUDED.token, user_email = EXCLUDED.user_email, expires_at = EXCLUDED.expires_at
		WHERE admin_lock.expires_at <= $4
		RETURNING token
	`, lock.Token, lock.UserEmail, lock.ExpiresAt, now)
	var token string
	if err := row.Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLockHeld
		}
		return err
	}
	return nil
}

// GetLock returns the current lock row, if any.
func (r *Repository) GetLock(ctx context.Context) (Lock, error) {
	row := r.db.QueryRowContext(ctx, `SELECT token, user_email, expires_at FROM admin_lock WHERE id = 1`)
	var lock Lock
	if err := row.Scan(&lock.Token, &lock.UserEmail, &lock.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lock{}, ErrNotFound
		}
		return Lock{}, err
	}
	return lock, nil
}

// ReleaseLock deletes the lock only when held by the given token.
func (r *Repository) ReleaseLock(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM admin_lock WHERE id = 1 AND token = $1`, token)
	return err
}

// DeleteExpiredLock clears a dead lock row; used by the sweeper.
func (r *Repository) DeleteExpiredLock(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_lock WHERE id = 1 AND expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
