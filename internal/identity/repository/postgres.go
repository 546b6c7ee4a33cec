package repository

import (
	"context"
	"database/sql"
	"errors"

	"biometric-attendance/backend/internal/db/sqlc/gen"
	"biometric-attendance/backend/internal/identity/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a student identity repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the student for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	return oneStudent(r.queries.GetStudent(ctx, id))
}

// GetByFingerprintID returns the student for the fingerprint id, or nil if not found.
func (r *PostgresRepository) GetByFingerprintID(ctx context.Context, fingerprintID string) (*domain.Student, error) {
	if fingerprintID == "" {
		return nil, nil
	}
	return oneStudent(r.queries.GetStudentByFingerprintID(ctx, sql.NullString{String: fingerprintID, Valid: true}))
}

// GetByFaceID returns the student for the face id, or nil if not found.
func (r *PostgresRepository) GetByFaceID(ctx context.Context, faceID string) (*domain.Student, error) {
	if faceID == "" {
		return nil, nil
	}
	return oneStudent(r.queries.GetStudentByFaceID(ctx, sql.NullString{String: faceID, Valid: true}))
}

// ListByOption returns students of the cohort ordered by name. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListByOption(ctx context.Context, optionID string) ([]*domain.Student, error) {
	return manyStudents(r.queries.ListStudentsByOption(ctx, sql.NullString{String: optionID, Valid: optionID != ""}))
}

// ListAttendingCourse returns students with at least one presence record in the course, ordered by name.
func (r *PostgresRepository) ListAttendingCourse(ctx context.Context, courseID string) ([]*domain.Student, error) {
	return manyStudents(r.queries.ListStudentsAttendingCourse(ctx, courseID))
}

func oneStudent(s gen.Student, err error) (*domain.Student, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genStudentToDomain(&s), nil
}

func manyStudents(list []gen.Student, err error) ([]*domain.Student, error) {
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Student, len(list))
	for i := range list {
		out[i] = genStudentToDomain(&list[i])
	}
	return out, nil
}

func genStudentToDomain(s *gen.Student) *domain.Student {
	return &domain.Student{
		ID:            s.ID,
		RegNo:         s.RegNo,
		Name:          s.Name,
		OptionID:      s.OptionID.String,
		FingerprintID: s.FingerprintID.String,
		FaceID:        s.FaceID.String,
	}
}
