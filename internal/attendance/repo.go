package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Record is one marked calendar day for one student. The backing
// store enforces uniqueness per (student, day).
type Record struct {
	ID           string    `json:"id"`
	StudentEmail string    `json:"student_email"`
	Branch       string    `json:"branch"`
	Day          time.Time `json:"day"`
	MarkedBy     string    `json:"marked_by"`
	MarkedAt     time.Time `json:"marked_at"`
}

// Repository persists attendance records in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new record. A duplicate (student, day) pair surfaces
// as ErrDuplicate from the unique index, not a second row.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (id, student_email, branch, day, marked_by, marked_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, rec.ID, rec.StudentEmail, rec.Branch, rec.Day, rec.MarkedBy, rec.MarkedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicate
		}
		return Record{}, err
	}
	return rec, nil
}

// Delete removes the record for a (student, day) pair.
func (r *Repository) Delete(ctx context.Context, studentEmail string, day time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM attendance WHERE student_email = $1 AND day = $2
	`, studentEmail, day)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByBranchMonth returns a branch's records within a calendar month.
func (r *Repository) ListByBranchMonth(ctx context.Context, branch string, year int, month time.Month) ([]Record, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_email, branch, day, marked_by, marked_at
		FROM attendance
		WHERE branch = $1 AND day >= $2 AND day < $3
		ORDER BY day, student_email
	`, branch, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListByStudent returns one student's records within a calendar month.
func (r *Repository) ListByStudent(ctx context.Context, studentEmail string, year int, month time.Month) ([]Record, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, student_email, branch, day, marked_by, marked_at
		FROM attendance
		WHERE student_email = $1 AND day >= $2 AND day < $3
		ORDER BY day
	`, studentEmail, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentEmail, &rec.Branch, &rec.Day, &rec.MarkedBy, &rec.MarkedAt); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
