package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biometric-attendance/backend/internal/db"
	"biometric-attendance/backend/internal/db/sqlc/gen"
	"biometric-attendance/backend/internal/presence/domain"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
)

// studentSessionKey is the unique constraint on (student_id, session_id).
const studentSessionKey = "attendance_records_student_session_key"

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a presence repository that uses the given db for persistence.
func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(conn)}
}

// Create persists the record. The record must have ID set. Returns ErrDuplicate on the (student, session) constraint.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	row, err := r.queries.CreateAttendanceRecord(ctx, gen.CreateAttendanceRecordParams{
		ID:         rec.ID,
		StudentID:  rec.StudentID,
		SessionID:  rec.SessionID,
		Status:     string(rec.Status),
		Method:     string(rec.Method),
		Confidence: floatToNull(rec.Confidence),
		RecordedAt: rec.RecordedAt,
	})
	if err != nil {
		if db.IsUniqueViolation(err, studentSessionKey) {
			return ErrDuplicate
		}
		return err
	}
	*rec = *genRecordToDomain(&row)
	return nil
}

// GetByStudentAndSession returns the record, or nil if the student is not marked for the session.
func (r *PostgresRepository) GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*domain.Record, error) {
	row, err := r.queries.GetAttendanceRecordByStudentAndSession(ctx, gen.GetAttendanceRecordByStudentAndSessionParams{
		StudentID: studentID,
		SessionID: sessionID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genRecordToDomain(&row), nil
}

// ListAttendees returns the attendees of the session, most recent first.
func (r *PostgresRepository) ListAttendees(ctx context.Context, sessionID string) ([]*domain.Attendee, error) {
	list, err := r.queries.ListAttendeesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Attendee, len(list))
	for i, row := range list {
		out[i] = &domain.Attendee{
			Record: domain.Record{
				ID:         row.ID,
				StudentID:  row.StudentID,
				SessionID:  sessionID,
				Status:     domain.Status(row.Status),
				Method:     sessiondomain.Method(row.Method),
				RecordedAt: row.RecordedAt,
				Confidence: nullToFloat(row.Confidence),
			},
			RegNo:       row.RegNo,
			StudentName: row.StudentName,
		}
	}
	return out, nil
}

// ListByCourse returns presence records for the course's sessions in the optional inclusive date range.
func (r *PostgresRepository) ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*domain.Record, error) {
	list, err := r.queries.ListAttendanceRecordsByCourse(ctx, gen.ListAttendanceRecordsByCourseParams{
		CourseID: courseID,
		FromDate: timeToNullTime(from),
		ToDate:   timeToNullTime(to),
	})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Record, len(list))
	for i := range list {
		out[i] = genRecordToDomain(&list[i])
	}
	return out, nil
}

func timeToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func floatToNull(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullToFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

func genRecordToDomain(r *gen.AttendanceRecord) *domain.Record {
	return &domain.Record{
		ID:         r.ID,
		StudentID:  r.StudentID,
		SessionID:  r.SessionID,
		Status:     domain.Status(r.Status),
		Method:     sessiondomain.Method(r.Method),
		RecordedAt: r.RecordedAt,
		Confidence: nullToFloat(r.Confidence),
	}
}
