package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	presencerepo "biometric-attendance/backend/internal/presence/repository"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
	telemetrydomain "biometric-attendance/backend/internal/telemetry/domain"
)

type mockSessions struct {
	sessions map[string]*sessiondomain.Session
	err      error
}

func (m *mockSessions) GetByID(ctx context.Context, id string) (*sessiondomain.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sessions[id], nil
}

type mockStudents struct {
	byFingerprint map[string]*identitydomain.Student
	byFace        map[string]*identitydomain.Student
}

func (m *mockStudents) GetByFingerprintID(ctx context.Context, id string) (*identitydomain.Student, error) {
	return m.byFingerprint[id], nil
}

func (m *mockStudents) GetByFaceID(ctx context.Context, id string) (*identitydomain.Student, error) {
	return m.byFace[id], nil
}

// memPresence enforces the (student, session) uniqueness the database provides.
type memPresence struct {
	mu        sync.Mutex
	records   map[string]*presencedomain.Record
	skipCheck bool // GetByStudentAndSession always misses, forcing the insert path
	createErr error
}

func newMemPresence() *memPresence {
	return &memPresence{records: make(map[string]*presencedomain.Record)}
}

func (m *memPresence) GetByStudentAndSession(ctx context.Context, studentID, sessionID string) (*presencedomain.Record, error) {
	if m.skipCheck {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[studentID+"/"+sessionID], nil
}

func (m *memPresence) Create(ctx context.Context, r *presencedomain.Record) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.StudentID + "/" + r.SessionID
	if _, ok := m.records[key]; ok {
		return presencerepo.ErrDuplicate
	}
	m.records[key] = r
	return nil
}

func (m *memPresence) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type captureEmitter struct {
	mu     sync.Mutex
	events []*telemetrydomain.Event
}

func (c *captureEmitter) Emit(ctx context.Context, e *telemetrydomain.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *captureEmitter) wait(t *testing.T, n int) []*telemetrydomain.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := len(c.events)
		c.mu.Unlock()
		if got >= n {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*telemetrydomain.Event(nil), c.events...)
}

func fixture() (*mockSessions, *mockStudents, *memPresence) {
	end := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions := &mockSessions{sessions: map[string]*sessiondomain.Session{
		"s-open":   {ID: "s-open", CourseID: "c-1", LecturerID: "lec-1", Method: sessiondomain.MethodFingerprint},
		"s-closed": {ID: "s-closed", CourseID: "c-1", LecturerID: "lec-1", Method: sessiondomain.MethodFingerprint, EndTime: &end},
	}}
	alice := &identitydomain.Student{ID: "stu-1", RegNo: "REG/001", Name: "Alice", FingerprintID: "17", FaceID: "face-a"}
	students := &mockStudents{
		byFingerprint: map[string]*identitydomain.Student{"17": alice},
		byFace:        map[string]*identitydomain.Student{"face-a": alice},
	}
	return sessions, students, newMemPresence()
}

func fingerprint(v string) Credential {
	return Credential{Method: sessiondomain.MethodFingerprint, Value: v}
}

func TestProcessIdentification_MarksOnce(t *testing.T) {
	sessions, students, presence := fixture()
	events := &captureEmitter{}
	p := NewProcessor(sessions, students, presence, events)
	ctx := context.Background()

	out, err := p.ProcessIdentification(ctx, "s-open", fingerprint("17"), nil)
	if err != nil {
		t.Fatalf("first identification: %v", err)
	}
	if out.Status != Marked {
		t.Errorf("status = %q, want %q", out.Status, Marked)
	}
	if out.Student.ID != "stu-1" {
		t.Errorf("student = %q, want stu-1", out.Student.ID)
	}
	if out.Record == nil || out.Record.Status != presencedomain.StatusPresent || out.Record.Method != sessiondomain.MethodFingerprint {
		t.Errorf("record = %+v, want present via fingerprint", out.Record)
	}

	out, err = p.ProcessIdentification(ctx, "s-open", fingerprint("17"), nil)
	if err != nil {
		t.Fatalf("repeat identification: %v", err)
	}
	if out.Status != AlreadyMarked {
		t.Errorf("repeat status = %q, want %q", out.Status, AlreadyMarked)
	}
	if presence.count() != 1 {
		t.Errorf("records = %d, want 1", presence.count())
	}

	got := events.wait(t, 1)
	if len(got) != 1 || got[0].Type != telemetrydomain.EventPresenceMarked || got[0].StudentID != "stu-1" {
		t.Errorf("events = %+v, want one presence_marked for stu-1", got)
	}
}

func TestProcessIdentification_DuplicateOnInsertIsAlreadyMarked(t *testing.T) {
	sessions, students, presence := fixture()
	p := NewProcessor(sessions, students, presence, nil)
	presence.skipCheck = true
	ctx := context.Background()

	if _, err := p.ProcessIdentification(ctx, "s-open", fingerprint("17"), nil); err != nil {
		t.Fatalf("first identification: %v", err)
	}
	out, err := p.ProcessIdentification(ctx, "s-open", fingerprint("17"), nil)
	if err != nil {
		t.Fatalf("second identification: %v", err)
	}
	if out.Status != AlreadyMarked {
		t.Errorf("status = %q, want %q", out.Status, AlreadyMarked)
	}
}

func TestProcessIdentification_ConcurrentSameStudent(t *testing.T) {
	sessions, students, presence := fixture()
	p := NewProcessor(sessions, students, presence, nil)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan OutcomeStatus, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := p.ProcessIdentification(context.Background(), "s-open", fingerprint("17"), nil)
			if err != nil {
				t.Errorf("identification: %v", err)
				return
			}
			results <- out.Status
		}()
	}
	wg.Wait()
	close(results)

	marked := 0
	for s := range results {
		if s == Marked {
			marked++
		}
	}
	if marked != 1 {
		t.Errorf("marked = %d, want exactly 1", marked)
	}
	if presence.count() != 1 {
		t.Errorf("records = %d, want 1", presence.count())
	}
}

func TestProcessIdentification_FaceKeepsConfidence(t *testing.T) {
	sessions, students, presence := fixture()
	p := NewProcessor(sessions, students, presence, nil)
	conf := 0.91

	out, err := p.ProcessIdentification(context.Background(), "s-open",
		Credential{Method: sessiondomain.MethodFaceRecognition, Value: "face-a"}, &conf)
	if err != nil {
		t.Fatalf("ProcessIdentification: %v", err)
	}
	if out.Record.Method != sessiondomain.MethodFaceRecognition {
		t.Errorf("method = %q, want face_recognition", out.Record.Method)
	}
	if out.Confidence == nil || *out.Confidence != conf {
		t.Errorf("confidence = %v, want %v", out.Confidence, conf)
	}
}

func TestProcessIdentification_Errors(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		cred      Credential
		setup     func(*mockSessions, *memPresence)
		wantErr   error
	}{
		{"missing session", "s-none", fingerprint("17"), nil, ErrSessionNotFound},
		{"empty session id", "", fingerprint("17"), nil, ErrSessionNotFound},
		{"closed session", "s-closed", fingerprint("17"), nil, ErrSessionClosed},
		{"unknown fingerprint", "s-open", fingerprint("99"), nil, ErrUnknownIdentity},
		{"unknown face", "s-open", Credential{Method: sessiondomain.MethodFaceRecognition, Value: "17"}, nil, ErrUnknownIdentity},
		{"blank credential", "s-open", fingerprint("  "), nil, ErrInvalidCredential},
		{"invalid method", "s-open", Credential{Method: "iris", Value: "17"}, nil, ErrInvalidCredential},
		{"session load fails", "s-open", fingerprint("17"), func(s *mockSessions, _ *memPresence) {
			s.err = errors.New("connection reset")
		}, ErrStore},
		{"insert fails", "s-open", fingerprint("17"), func(_ *mockSessions, p *memPresence) {
			p.createErr = errors.New("disk full")
		}, ErrStore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions, students, presence := fixture()
			if tt.setup != nil {
				tt.setup(sessions, presence)
			}
			p := NewProcessor(sessions, students, presence, nil)
			out, err := p.ProcessIdentification(context.Background(), tt.sessionID, tt.cred, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Errorf("outcome = %+v, want nil", out)
			}
			if presence.count() != 0 {
				t.Errorf("records = %d, want 0", presence.count())
			}
		})
	}
}

func TestProcessIdentification_UnknownIdentityEmitsFailure(t *testing.T) {
	sessions, students, presence := fixture()
	events := &captureEmitter{}
	p := NewProcessor(sessions, students, presence, events)

	if _, err := p.ProcessIdentification(context.Background(), "s-open", fingerprint("99"), nil); !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("err = %v, want ErrUnknownIdentity", err)
	}
	got := events.wait(t, 1)
	if len(got) != 1 || got[0].Type != telemetrydomain.EventCheckinFailed || got[0].Outcome != "unknown_identity" {
		t.Errorf("events = %+v, want one checkin_failed", got)
	}
}
