package repository

import (
	"context"
	"database/sql"
	"errors"

	"biometric-attendance/backend/internal/course/domain"
	"biometric-attendance/backend/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a course repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the course for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	c, err := r.queries.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Course{
		ID:           c.ID,
		Code:         c.Code,
		Name:         c.Name,
		DepartmentID: c.DepartmentID,
		LecturerID:   c.LecturerID.String,
		OptionID:     c.OptionID.String,
	}, nil
}

// GetLecturer returns the lecturer for id, or nil if not found.
func (r *PostgresRepository) GetLecturer(ctx context.Context, id string) (*domain.Lecturer, error) {
	l, err := r.queries.GetLecturer(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Lecturer{ID: l.ID, Name: l.Name, DepartmentID: l.DepartmentID}, nil
}
