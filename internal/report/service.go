package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	coursedomain "biometric-attendance/backend/internal/course/domain"
	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
	telemetryotel "biometric-attendance/backend/internal/telemetry/otel"
)

const dateLayout = "2006-01-02"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrInvalidRange   = errors.New("invalid date range")
)

// DateRange bounds a report by session date, inclusive. Either bound may be nil.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// ParseDateRange parses YYYY-MM-DD bounds; empty strings are unbounded. Returns nil when both are empty.
func ParseDateRange(from, to string) (*DateRange, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}
	r := &DateRange{}
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return nil, fmt.Errorf("%w: from %q", ErrInvalidRange, from)
		}
		r.From = &t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return nil, fmt.Errorf("%w: to %q", ErrInvalidRange, to)
		}
		r.To = &t
	}
	if r.From != nil && r.To != nil && r.From.After(*r.To) {
		return nil, fmt.Errorf("%w: from is after to", ErrInvalidRange)
	}
	return r, nil
}

func (r *DateRange) bounds() (from, to *time.Time) {
	if r == nil {
		return nil, nil
	}
	return r.From, r.To
}

// SnapshotSource loads a course snapshot. Returns (nil, nil) for an unknown course.
type SnapshotSource interface {
	Snapshot(ctx context.Context, courseID string, r *DateRange) (*Snapshot, error)
}

// Service runs reports over snapshots loaded from a SnapshotSource.
type Service struct {
	source SnapshotSource
	tracer trace.Tracer
}

// NewService returns a report service.
func NewService(source SnapshotSource) *Service {
	return &Service{source: source, tracer: telemetryotel.Tracer()}
}

// Summarize returns per-student summaries for the course within r.
func (s *Service) Summarize(ctx context.Context, courseID string, r *DateRange) ([]Summary, error) {
	snap, err := s.load(ctx, "report.Summarize", courseID, r)
	if err != nil {
		return nil, err
	}
	return Summarize(*snap), nil
}

// BuildMatrix returns the course matrix within r, optionally restricted to studentIDs.
func (s *Service) BuildMatrix(ctx context.Context, courseID string, r *DateRange, studentIDs ...string) (*Matrix, error) {
	snap, err := s.load(ctx, "report.BuildMatrix", courseID, r)
	if err != nil {
		return nil, err
	}
	m := BuildMatrix(*snap, studentIDs...)
	return &m, nil
}

func (s *Service) load(ctx context.Context, span, courseID string, r *DateRange) (*Snapshot, error) {
	ctx, sp := s.tracer.Start(ctx, span, trace.WithAttributes(attribute.String("course.id", courseID)))
	defer sp.End()
	snap, err := s.source.Snapshot(ctx, courseID, r)
	if err != nil {
		sp.RecordError(err)
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return nil, ErrCourseNotFound
	}
	sp.SetAttributes(
		attribute.Int("report.sessions", len(snap.Sessions)),
		attribute.Int("report.students", len(snap.Students)),
	)
	return snap, nil
}

// CourseReader loads a course, or nil.
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*coursedomain.Course, error)
}

// SessionLister lists a course's sessions within inclusive date bounds.
type SessionLister interface {
	ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*sessiondomain.Session, error)
}

// CohortLister lists students by cohort, or by attendance when a course has no cohort.
type CohortLister interface {
	ListByOption(ctx context.Context, optionID string) ([]*identitydomain.Student, error)
	ListAttendingCourse(ctx context.Context, courseID string) ([]*identitydomain.Student, error)
}

// PresenceLister lists presence records of a course's sessions within inclusive date bounds.
type PresenceLister interface {
	ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*presencedomain.Record, error)
}

// StoreSource builds snapshots from the attendance repositories.
type StoreSource struct {
	Courses  CourseReader
	Sessions SessionLister
	Students CohortLister
	Presence PresenceLister
}

// Snapshot implements SnapshotSource. The cohort is the course option's students; a course without an
// option falls back to students with any presence in its sessions. Students are ordered by reg no.
func (s *StoreSource) Snapshot(ctx context.Context, courseID string, r *DateRange) (*Snapshot, error) {
	course, err := s.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, nil
	}
	from, to := r.bounds()
	sessions, err := s.Sessions.ListByCourse(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var students []*identitydomain.Student
	if course.OptionID != "" {
		students, err = s.Students.ListByOption(ctx, course.OptionID)
	} else {
		students, err = s.Students.ListAttendingCourse(ctx, courseID)
	}
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	presence, err := s.Presence.ListByCourse(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list presence: %w", err)
	}
	sort.SliceStable(students, func(i, j int) bool { return students[i].RegNo < students[j].RegNo })
	return &Snapshot{Course: course, Sessions: sessions, Students: students, Presence: presence}, nil
}
