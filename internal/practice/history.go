package practice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrHistoryNotFound = errors.New("test history item not found")

// HistoryItem is one persisted test outcome. Immutable once written.
type HistoryItem struct {
	ID              string    `json:"id"`
	UserIdentifier  string    `json:"user_identifier"`
	DrawingType     string    `json:"drawing_type"`
	DurationSeconds int       `json:"duration_seconds"`
	Score           float64   `json:"score"`
	Accuracy        float64   `json:"accuracy"`
	Errors          []string  `json:"errors"`
	Feedback        string    `json:"feedback"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryRepository persists test history in Postgres.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a repo.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert writes a new history row.
func (r *HistoryRepository) Insert(ctx context.Context, item HistoryItem) (HistoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.Errors == nil {
		item.Errors = []string{}
	}
	errsJSON, err := json.Marshal(item.Errors)
	if err != nil {
		return HistoryItem{}, err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO test_history (id, user_identifier, drawing_type, duration_seconds, score, accuracy, errors, feedback, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, item.ID, item.UserIdentifier, item.DrawingType, item.DurationSeconds,
		item.Score, item.Accuracy, errsJSON, item.Feedback, item.CreatedAt)
	if err != nil {
		return HistoryItem{}, err
	}
	return item, nil
}

// Get returns one history row by id.
func (r *HistoryRepository) Get(ctx context.Context, id string) (HistoryItem, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_identifier, drawing_type, duration_seconds, score, accuracy, errors, feedback, created_at
		FROM test_history WHERE id = $1
	`, id)
	return scanHistory(row)
}

// ListByUser returns a user's history, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userIdentifier string, limit int) ([]HistoryItem, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_identifier, drawing_type, duration_seconds, score, accuracy, errors, feedback, created_at
		FROM test_history
		WHERE user_identifier = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userIdentifier, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		item, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner) (HistoryItem, error) {
	var item HistoryItem
	var errsJSON []byte
	err := row.Scan(&item.ID, &item.UserIdentifier, &item.DrawingType, &item.DurationSeconds,
		&item.Score, &item.Accuracy, &errsJSON, &item.Feedback, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryItem{}, ErrHistoryNotFound
	}
	if err != nil {
		return HistoryItem{}, err
	}
	if err := json.Unmarshal(errsJSON, &item.Errors); err != nil {
		return HistoryItem{}, err
	}
	return item, nil
}
