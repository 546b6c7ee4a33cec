// Package service owns the attendance session lifecycle and routes check-ins into an open session.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"biometric-attendance/backend/internal/audit"
	"biometric-attendance/backend/internal/biometric/face"
	"biometric-attendance/backend/internal/biometric/fingerprint"
	"biometric-attendance/backend/internal/checkin"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	"biometric-attendance/backend/internal/session/domain"
	sessionrepo "biometric-attendance/backend/internal/session/repository"
	"biometric-attendance/backend/internal/telemetry"
	telemetrydomain "biometric-attendance/backend/internal/telemetry/domain"
)

var (
	// ErrConflict means the course already has an open session.
	ErrConflict = errors.New("course already has an open session")
	// ErrForbidden means the lecturer may not take attendance for the course.
	ErrForbidden = errors.New("lecturer is not assigned to this course")
	// ErrNotFound covers missing sessions and sessions owned by another lecturer.
	ErrNotFound        = errors.New("session not found")
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMethodUnavailable means the biometric backend for the method is not configured.
	ErrMethodUnavailable = errors.New("biometric method unavailable")
)

// PollerControl runs background fingerprint pollers keyed by session id.
type PollerControl interface {
	Start(sessionID string, handler fingerprint.ReadingHandler) bool
	Stop(sessionID string) bool
	Touch(sessionID string) bool
	Status(sessionID string) (fingerprint.Status, bool)
}

// Authorizer answers whether a lecturer may run attendance for a course. Unknown courses are false.
type Authorizer interface {
	LecturerOwnsCourse(ctx context.Context, lecturerID, courseID string) (bool, error)
}

// Processor records a resolved identification.
type Processor interface {
	ProcessIdentification(ctx context.Context, sessionID string, cred checkin.Credential, confidence *float64) (*checkin.Outcome, error)
}

// FaceMatcher identifies the student in a captured image.
type FaceMatcher interface {
	Match(ctx context.Context, img face.Image) (face.Verdict, error)
}

// AttendeeLister lists a session's presence records, most recent first.
type AttendeeLister interface {
	ListAttendees(ctx context.Context, sessionID string) ([]*presencedomain.Attendee, error)
}

// Deps holds the manager's collaborators. Pollers, Matcher, Audit and Events may be nil.
type Deps struct {
	Sessions   sessionrepo.Repository
	Attendees  AttendeeLister
	Authorizer Authorizer
	Processor  Processor
	Pollers    PollerControl
	Matcher    FaceMatcher
	Audit      audit.AuditLogger
	Events     telemetry.EventEmitter
	// StrictMethod rejects unknown biometric methods with ErrInvalidArgument instead of using fingerprint.
	StrictMethod bool
}

// StartRequest is a lecturer's request to open a session.
type StartRequest struct {
	LecturerID string
	CourseID   string
	OptionID   string
	Method     string
}

// Status is a session together with its attendees. Poller is set while a fingerprint poller is running.
type Status struct {
	Session   *domain.Session
	Attendees []*presencedomain.Attendee
	Poller    *fingerprint.Status
}

// Manager implements the session lifecycle: at most one open session per course.
type Manager struct {
	deps  Deps
	nowF  func() time.Time
	newID func() string
}

// NewManager returns a Manager over deps.
func NewManager(deps Deps) *Manager {
	return &Manager{deps: deps, nowF: time.Now, newID: uuid.NewString}
}

// StartSession opens a session for the course. Returns ErrForbidden when the lecturer does not own the
// course and ErrConflict when the course already has an open session, including when a concurrent start won.
func (m *Manager) StartSession(ctx context.Context, req StartRequest) (*domain.Session, error) {
	req.LecturerID = strings.TrimSpace(req.LecturerID)
	req.CourseID = strings.TrimSpace(req.CourseID)
	if req.LecturerID == "" || req.CourseID == "" {
		return nil, fmt.Errorf("%w: lecturer and course are required", ErrInvalidArgument)
	}
	method, err := m.resolveMethod(req.Method)
	if err != nil {
		return nil, err
	}

	ok, err := m.deps.Authorizer.LecturerOwnsCourse(ctx, req.LecturerID, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: authorize: %v", checkin.ErrStore, err)
	}
	if !ok {
		return nil, ErrForbidden
	}

	open, err := m.deps.Sessions.FindOpenByCourse(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("%w: find open session: %v", checkin.ErrStore, err)
	}
	if open != nil {
		return nil, ErrConflict
	}

	now := m.nowF().UTC()
	ses := &domain.Session{
		ID:         m.newID(),
		CourseID:   req.CourseID,
		LecturerID: req.LecturerID,
		OptionID:   strings.TrimSpace(req.OptionID),
		Date:       domain.DateOf(now),
		StartTime:  now,
		Method:     method,
	}
	if err := m.deps.Sessions.Create(ctx, ses); err != nil {
		if errors.Is(err, sessionrepo.ErrOpenSessionExists) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("%w: create session: %v", checkin.ErrStore, err)
	}

	if method == domain.MethodFingerprint {
		m.startPoller(ses.ID)
	}
	m.record(ctx, ses, req.LecturerID, "session_started", telemetrydomain.EventSessionStarted)
	return ses, nil
}

// EndSession closes the requester's open session. Missing, closed and foreign sessions are all ErrNotFound.
func (m *Manager) EndSession(ctx context.Context, sessionID, requester string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" || requester == "" {
		return nil, ErrNotFound
	}
	ses, err := m.deps.Sessions.Close(ctx, sessionID, requester, m.nowF().UTC())
	if err != nil {
		return nil, fmt.Errorf("%w: close session: %v", checkin.ErrStore, err)
	}
	if ses == nil {
		return nil, ErrNotFound
	}
	if m.deps.Pollers != nil {
		m.deps.Pollers.Stop(ses.ID)
	}
	m.record(ctx, ses, requester, "session_ended", telemetrydomain.EventSessionEnded)
	return ses, nil
}

// GetStatus returns the requester's session, open or closed, with attendees most recent first.
// Reading the status of an open fingerprint session renews its poller's lease, restarting a poller
// whose lease already ran out.
func (m *Manager) GetStatus(ctx context.Context, sessionID, requester string) (*Status, error) {
	ses, err := m.ownedSession(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}
	attendees, err := m.deps.Attendees.ListAttendees(ctx, ses.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list attendees: %v", checkin.ErrStore, err)
	}
	st := &Status{Session: ses, Attendees: attendees}

	if m.deps.Pollers != nil && ses.IsOpen() && ses.Method == domain.MethodFingerprint {
		if !m.deps.Pollers.Touch(ses.ID) {
			m.startPoller(ses.ID)
		}
		if ps, ok := m.deps.Pollers.Status(ses.ID); ok {
			st.Poller = &ps
		}
	}
	return st, nil
}

// MarkByFingerprint records a fingerprint read submitted by the session's lecturer.
func (m *Manager) MarkByFingerprint(ctx context.Context, sessionID, requester, fingerprintID string) (*checkin.Outcome, error) {
	fingerprintID = strings.TrimSpace(fingerprintID)
	if fingerprintID == "" {
		return nil, fmt.Errorf("%w: fingerprint_id is required", ErrInvalidArgument)
	}
	ses, err := m.openOwnedSession(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}
	return m.deps.Processor.ProcessIdentification(ctx, ses.ID,
		checkin.Credential{Method: domain.MethodFingerprint, Value: fingerprintID}, nil)
}

// MarkByFace runs the face matcher on img and records the recognized student.
func (m *Manager) MarkByFace(ctx context.Context, sessionID, requester string, img face.Image) (*checkin.Outcome, error) {
	if m.deps.Matcher == nil {
		return nil, fmt.Errorf("%w: face recognition is not configured", ErrMethodUnavailable)
	}
	ses, err := m.openOwnedSession(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}
	verdict, err := m.deps.Matcher.Match(ctx, img)
	if err != nil {
		return nil, err
	}
	return m.deps.Processor.ProcessIdentification(ctx, ses.ID,
		checkin.Credential{Method: domain.MethodFaceRecognition, Value: verdict.StudentID}, verdict.Confidence)
}

// HandleReading is the poller callback. It returns an error wrapping fingerprint.ErrStopPolling once the
// session is closed or gone so the poller exits.
func (m *Manager) HandleReading(ctx context.Context, sessionID, fingerprintID string) error {
	out, err := m.deps.Processor.ProcessIdentification(ctx, sessionID,
		checkin.Credential{Method: domain.MethodFingerprint, Value: fingerprintID}, nil)
	if err != nil {
		if errors.Is(err, checkin.ErrSessionClosed) || errors.Is(err, checkin.ErrSessionNotFound) {
			return fmt.Errorf("%w: %w", fingerprint.ErrStopPolling, err)
		}
		return err
	}
	log.Printf("checkin: session %s student %s %s by fingerprint", sessionID, out.Student.ID, out.Status)
	return nil
}

func (m *Manager) resolveMethod(raw string) (domain.Method, error) {
	if method, ok := domain.ParseMethod(raw); ok {
		return method, nil
	}
	if m.deps.StrictMethod {
		return "", fmt.Errorf("%w: unknown biometric method %q", ErrInvalidArgument, raw)
	}
	log.Printf("session: unknown biometric method %q, using %s", raw, domain.MethodFingerprint)
	return domain.MethodFingerprint, nil
}

func (m *Manager) ownedSession(ctx context.Context, sessionID, requester string) (*domain.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrNotFound
	}
	ses, err := m.deps.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", checkin.ErrStore, err)
	}
	if ses == nil || !ses.OwnedBy(requester) {
		return nil, ErrNotFound
	}
	return ses, nil
}

func (m *Manager) openOwnedSession(ctx context.Context, sessionID, requester string) (*domain.Session, error) {
	ses, err := m.ownedSession(ctx, sessionID, requester)
	if err != nil {
		return nil, err
	}
	if !ses.IsOpen() {
		return nil, checkin.ErrSessionClosed
	}
	return ses, nil
}

func (m *Manager) startPoller(sessionID string) {
	if m.deps.Pollers == nil {
		return
	}
	m.deps.Pollers.Start(sessionID, m.HandleReading)
}

func (m *Manager) record(ctx context.Context, ses *domain.Session, actorID, action, eventType string) {
	if m.deps.Audit != nil {
		meta, _ := json.Marshal(map[string]string{
			"course_id": ses.CourseID,
			"method":    string(ses.Method),
		})
		m.deps.Audit.LogEvent(ctx, actorID, action, "attendance_session", ses.ID, string(meta))
	}
	telemetry.EmitAsync(m.deps.Events, &telemetrydomain.Event{
		Type:       eventType,
		CourseID:   ses.CourseID,
		SessionID:  ses.ID,
		LecturerID: ses.LecturerID,
		Method:     string(ses.Method),
		OccurredAt: m.nowF().UTC(),
	})
}
