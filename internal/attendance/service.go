package attendance

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicate = errors.New("attendance already marked for this day")
	ErrBadDay    = errors.New("invalid attendance date")
)

// Service coordinates attendance marking for admins.
type Service struct {
	repo *Repository
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Mark records attendance for a student on a calendar day. Marking the
// same day twice yields ErrDuplicate.
func (s *Service) Mark(ctx context.Context, studentEmail, branch, day, markedBy string) (Record, error) {
	d, err := ParseDay(day)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		StudentEmail: studentEmail,
		Branch:       branch,
		Day:          d,
		MarkedBy:     markedBy,
	}
	return s.repo.Insert(ctx, rec)
}

// Unmark removes an attendance mark.
func (s *Service) Unmark(ctx context.Context, studentEmail, day string) error {
	d, err := ParseDay(day)
	if err != nil {
		return err
	}
	_, err = s.repo.Delete(ctx, studentEmail, d)
	return err
}

// ByBranchMonth lists a branch's records for a calendar month.
func (s *Service) ByBranchMonth(ctx context.Context, branch string, year, month int) ([]Record, error) {
	if month < 1 || month > 12 {
		return nil, ErrBadDay
	}
	return s.repo.ListByBranchMonth(ctx, branch, year, time.Month(month))
}

// ByStudentMonth lists one student's records for a calendar month.
func (s *Service) ByStudentMonth(ctx context.Context, studentEmail string, year, month int) ([]Record, error) {
	if month < 1 || month > 12 {
		return nil, ErrBadDay
	}
	return s.repo.ListByStudent(ctx, studentEmail, year, time.Month(month))
}

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(day string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, ErrBadDay
	}
	return d, nil
}
