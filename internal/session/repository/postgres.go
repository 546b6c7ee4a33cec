package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biometric-attendance/backend/internal/db"
	"biometric-attendance/backend/internal/db/sqlc/gen"
	"biometric-attendance/backend/internal/session/domain"
)

// openSessionIndex is the partial unique index allowing one open session per course.
const openSessionIndex = "attendance_sessions_one_open_per_course"

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(conn)}
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	row, err := r.queries.CreateAttendanceSession(ctx, gen.CreateAttendanceSessionParams{
		ID:              s.ID,
		CourseID:        s.CourseID,
		LecturerID:      s.LecturerID,
		OptionID:        sql.NullString{String: s.OptionID, Valid: s.OptionID != ""},
		SessionDate:     s.Date,
		StartTime:       s.StartTime,
		BiometricMethod: string(s.Method),
	})
	if err != nil {
		if db.IsUniqueViolation(err, openSessionIndex) {
			return ErrOpenSessionExists
		}
		return err
	}
	*s = *genSessionToDomain(&row)
	return nil
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return oneSession(r.queries.GetAttendanceSession(ctx, id))
}

// FindOpenByCourse returns the course's open session, or nil if none.
func (r *PostgresRepository) FindOpenByCourse(ctx context.Context, courseID string) (*domain.Session, error) {
	return oneSession(r.queries.GetOpenAttendanceSessionByCourse(ctx, courseID))
}

// Close ends the open session. Returns (nil, nil) when the session is missing, closed, or owned by someone else.
func (r *PostgresRepository) Close(ctx context.Context, id, lecturerID string, at time.Time) (*domain.Session, error) {
	return oneSession(r.queries.CloseAttendanceSession(ctx, gen.CloseAttendanceSessionParams{
		ID:         id,
		EndTime:    sql.NullTime{Time: at, Valid: true},
		LecturerID: lecturerID,
	}))
}

// ListByCourse returns the course's sessions within the optional inclusive date range.
func (r *PostgresRepository) ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*domain.Session, error) {
	list, err := r.queries.ListAttendanceSessionsByCourse(ctx, gen.ListAttendanceSessionsByCourseParams{
		CourseID: courseID,
		FromDate: timeToNullTime(from),
		ToDate:   timeToNullTime(to),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Session, len(list))
	for i := range list {
		out[i] = genSessionToDomain(&list[i])
	}
	return out, nil
}

func oneSession(s gen.AttendanceSession, err error) (*domain.Session, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genSessionToDomain(&s), nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimeToPtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	return &n.Time
}

func genSessionToDomain(s *gen.AttendanceSession) *domain.Session {
	return &domain.Session{
		ID:         s.ID,
		CourseID:   s.CourseID,
		LecturerID: s.LecturerID,
		OptionID:   s.OptionID.String,
		Date:       domain.DateOf(s.SessionDate),
		StartTime:  s.StartTime,
		EndTime:    nullTimeToPtr(s.EndTime),
		Method:     domain.Method(s.BiometricMethod),
	}
}
