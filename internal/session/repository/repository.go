package repository

import (
	"context"
	"errors"
	"time"

	"biometric-attendance/backend/internal/session/domain"
)

// ErrOpenSessionExists is returned by Create when the course already has an open session.
var ErrOpenSessionExists = errors.New("course already has an open session")

// Repository defines persistence for attendance sessions.
type Repository interface {
	// Create persists s. Returns ErrOpenSessionExists when the one-open-session-per-course index rejects it.
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	FindOpenByCourse(ctx context.Context, courseID string) (*domain.Session, error)
	// Close sets end time on the open session id started by lecturerID. Returns nil when no such open session exists.
	Close(ctx context.Context, id, lecturerID string, at time.Time) (*domain.Session, error)
	// ListByCourse returns the course's sessions by date then start time; from and to are inclusive dates and optional.
	ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*domain.Session, error)
}
