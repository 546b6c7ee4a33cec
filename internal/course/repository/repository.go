package repository

import (
	"context"

	"biometric-attendance/backend/internal/course/domain"
)

// Repository defines read access to courses and lecturers.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	GetLecturer(ctx context.Context, id string) (*domain.Lecturer, error)
}
