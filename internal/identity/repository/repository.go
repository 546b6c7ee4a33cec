package repository

import (
	"context"

	"biometric-attendance/backend/internal/identity/domain"
)

// Repository resolves students and their biometric identities. Read-only.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Student, error)
	// GetByFingerprintID returns the student enrolled with the given scanner template id, or nil.
	GetByFingerprintID(ctx context.Context, fingerprintID string) (*domain.Student, error)
	// GetByFaceID returns the student the recognizer id maps to, or nil.
	GetByFaceID(ctx context.Context, faceID string) (*domain.Student, error)
	ListByOption(ctx context.Context, optionID string) ([]*domain.Student, error)
	ListAttendingCourse(ctx context.Context, courseID string) ([]*domain.Student, error)
}
