package content

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("content not found")

// Drawing types covered by the curriculum.
const (
	DrawingOrthographic = "orthographic"
	DrawingIsometric    = "isometric"
	DrawingSectional    = "sectional"
)

// Content types stored per row.
const (
	TypeNotes     = "notes"
	TypeVideo     = "video"
	TypeReference = "reference"
)

// ValidDrawingType reports whether s names a known drawing type.
func ValidDrawingType(s string) bool {
	switch s {
	case DrawingOrthographic, DrawingIsometric, DrawingSectional:
		return true
	}
	return false
}

// ValidContentType reports whether s names a known content type.
func ValidContentType(s string) bool {
	switch s {
	case TypeNotes, TypeVideo, TypeReference:
		return true
	}
	return false
}

// Item is one piece of reference material: lecture notes, a tutorial
// video, or a reference drawing used as the AI comparison baseline.
type Item struct {
	ID          string    `json:"id"`
	Branch      string    `json:"branch"`
	Semester    int       `json:"semester"`
	DrawingType string    `json:"drawing_type"`
	ContentType string    `json:"content_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter narrows content listings; zero values mean "any".
type Filter struct {
	Branch      string
	Semester    int
	DrawingType string
	ContentType string
}

// Repository persists content rows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new content row.
func (r *Repository) Insert(ctx context.Context, item Item) (Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO content (id, branch, semester, drawing_type, content_type, title, description, url, uploaded_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, item.ID, item.Branch, item.Semester, item.DrawingType, item.ContentType,
		item.Title, item.Description, item.URL, item.UploadedBy, item.CreatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a content row by id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns content rows matching the filter, newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]Item, error) {
	query := `SELECT id, branch, semester, drawing_type, content_type, title, description, url, uploaded_by, created_at FROM content`
	args := []any{}
	clauses := []string{}
	if f.Branch != "" {
		args = append(args, f.Branch)
		clauses = append(clauses, "branch = $"+strconv.Itoa(len(args)))
	}
	if f.Semester > 0 {
		args = append(args, f.Semester)
		clauses = append(clauses, "semester = $"+strconv.Itoa(len(args)))
	}
	if f.DrawingType != "" {
		args = append(args, f.DrawingType)
		clauses = append(clauses, "drawing_type = $"+strconv.Itoa(len(args)))
	}
	if f.ContentType != "" {
		args = append(args, f.ContentType)
		clauses = append(clauses, "content_type = $"+strconv.Itoa(len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Branch, &item.Semester, &item.DrawingType, &item.ContentType,
			&item.Title, &item.Description, &item.URL, &item.UploadedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// VideosByDrawingType returns the video candidates used for
// recommendations, in stored order.
func (r *Repository) VideosByDrawingType(ctx context.Context, drawingType string) ([]Item, error) {
	return r.List(ctx, Filter{DrawingType: drawingType, ContentType: TypeVideo})
}
