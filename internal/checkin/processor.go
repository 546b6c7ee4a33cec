// Package checkin turns a biometric identification into at most one presence record per student and session.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	presencerepo "biometric-attendance/backend/internal/presence/repository"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
	"biometric-attendance/backend/internal/telemetry"
	telemetrydomain "biometric-attendance/backend/internal/telemetry/domain"
	telemetryotel "biometric-attendance/backend/internal/telemetry/otel"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session is closed")
	// ErrUnknownIdentity means the credential is not enrolled to any student.
	ErrUnknownIdentity   = errors.New("biometric identity is not linked to a student")
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrStore wraps persistence failures. The check-in failed and may be retried.
	ErrStore = errors.New("attendance store error")
)

// OutcomeStatus distinguishes a fresh mark from an idempotent repeat.
type OutcomeStatus string

const (
	Marked        OutcomeStatus = "marked"
	AlreadyMarked OutcomeStatus = "already_marked"
)

// Outcome is the result of a successful identification.
type Outcome struct {
	Status  OutcomeStatus
	Student *identitydomain.Student
	// Record is the stored presence; set for Marked and, when known, for AlreadyMarked.
	Record     *presencedomain.Record
	Confidence *float64
}

// Credential is a raw biometric identifier as produced by a device or recognizer.
type Credential struct {
	Method sessiondomain.Method
	Value  string
}

// SessionReader loads sessions.
type SessionReader interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
}

// StudentResolver maps biometric identifiers to students. Missing students are (nil, nil).
type StudentResolver interface {
	GetByFingerprintID(ctx context.Context, fingerprintID string) (*identitydomain.Student, error)
	GetByFaceID(ctx context.Context, faceID string) (*identitydomain.Student, error)
}

// PresenceStore reads and writes presence records. Create returns presencerepo.ErrDuplicate on (student, session) conflict.
type PresenceStore interface {
	GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*presencedomain.Record, error)
	Create(ctx context.Context, r *presencedomain.Record) error
}

// Processor records presence for identified students.
type Processor struct {
	sessions SessionReader
	students StudentResolver
	presence PresenceStore
	events   telemetry.EventEmitter

	nowF     func() time.Time
	newID    func() string
	tracer   trace.Tracer
	checkins metric.Int64Counter
}

// NewProcessor returns a processor. events may be nil.
func NewProcessor(sessions SessionReader, students StudentResolver, presence PresenceStore, events telemetry.EventEmitter) *Processor {
	p := &Processor{
		sessions: sessions,
		students: students,
		presence: presence,
		events:   events,
		nowF:     time.Now,
		newID:    uuid.NewString,
		tracer:   telemetryotel.Tracer(),
	}
	counter, err := telemetryotel.Meter().Int64Counter("attendance.checkins",
		metric.WithDescription("Identification attempts by method and outcome"))
	if err == nil {
		p.checkins = counter
	}
	return p
}

// ProcessIdentification marks the student behind cred present in sessionID.
// A repeat identification returns AlreadyMarked, never an error, whether caught by the pre-check or by the
// store's uniqueness constraint.
func (p *Processor) ProcessIdentification(ctx context.Context, sessionID string, cred Credential, confidence *float64) (*Outcome, error) {
	ctx, span := p.tracer.Start(ctx, "checkin.ProcessIdentification", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("checkin.method", string(cred.Method)),
	))
	defer span.End()

	out, err := p.process(ctx, sessionID, cred, confidence)
	var result string
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result = failureLabel(err)
	default:
		result = string(out.Status)
		span.SetAttributes(attribute.String("student.id", out.Student.ID))
	}
	span.SetAttributes(attribute.String("checkin.outcome", result))
	if p.checkins != nil {
		p.checkins.Add(ctx, 1, metric.WithAttributes(
			attribute.String("method", string(cred.Method)),
			attribute.String("outcome", result),
		))
	}
	return out, err
}

func (p *Processor) process(ctx context.Context, sessionID string, cred Credential, confidence *float64) (*Outcome, error) {
	value := strings.TrimSpace(cred.Value)
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	if !cred.Method.Valid() || value == "" {
		return nil, ErrInvalidCredential
	}

	ses, err := p.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrStore, err)
	}
	if ses == nil {
		return nil, ErrSessionNotFound
	}
	if !ses.IsOpen() {
		return nil, ErrSessionClosed
	}

	student, err := p.resolve(ctx, cred.Method, value)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve identity: %v", ErrStore, err)
	}
	if student == nil {
		p.emit(ses, cred.Method, "", "unknown_identity", telemetrydomain.EventCheckinFailed)
		return nil, ErrUnknownIdentity
	}

	existing, err := p.presence.GetByStudentAndSession(ctx, student.ID, ses.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: check presence: %v", ErrStore, err)
	}
	if existing != nil {
		return &Outcome{Status: AlreadyMarked, Student: student, Record: existing, Confidence: existing.Confidence}, nil
	}

	rec := &presencedomain.Record{
		ID:         p.newID(),
		StudentID:  student.ID,
		SessionID:  ses.ID,
		Status:     presencedomain.StatusPresent,
		Method:     cred.Method,
		RecordedAt: p.nowF().UTC(),
		Confidence: confidence,
	}
	if err := p.presence.Create(ctx, rec); err != nil {
		if errors.Is(err, presencerepo.ErrDuplicate) {
			return &Outcome{Status: AlreadyMarked, Student: student}, nil
		}
		return nil, fmt.Errorf("%w: record presence: %v", ErrStore, err)
	}
	p.emit(ses, cred.Method, student.ID, string(Marked), telemetrydomain.EventPresenceMarked)
	return &Outcome{Status: Marked, Student: student, Record: rec, Confidence: confidence}, nil
}

func (p *Processor) resolve(ctx context.Context, method sessiondomain.Method, value string) (*identitydomain.Student, error) {
	if method == sessiondomain.MethodFaceRecognition {
		return p.students.GetByFaceID(ctx, value)
	}
	return p.students.GetByFingerprintID(ctx, value)
}

func (p *Processor) emit(ses *sessiondomain.Session, method sessiondomain.Method, studentID, outcome, eventType string) {
	telemetry.EmitAsync(p.events, &telemetrydomain.Event{
		Type:       eventType,
		CourseID:   ses.CourseID,
		SessionID:  ses.ID,
		LecturerID: ses.LecturerID,
		StudentID:  studentID,
		Method:     string(method),
		Outcome:    outcome,
		OccurredAt: p.nowF().UTC(),
	})
}

func failureLabel(err error) string {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrStore):
		return "store_error"
	}
	return "error"
}
