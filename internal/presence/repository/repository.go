package repository

import (
	"context"
	"errors"
	"time"

	"biometric-attendance/backend/internal/presence/domain"
)

// ErrDuplicate is returned by Create when the student is already recorded for the session.
var ErrDuplicate = errors.New("presence already recorded")

// Repository defines persistence for presence records.
type Repository interface {
	// Create inserts r. Returns ErrDuplicate when (student, session) already exists.
	Create(ctx context.Context, r *domain.Record) error
	GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*domain.Record, error)
	// ListAttendees returns the session's records, most recent first.
	ListAttendees(ctx context.Context, sessionID string) ([]*domain.Attendee, error)
	// ListByCourse returns records of the course's sessions within the optional inclusive date range.
	ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*domain.Record, error)
}
