package audit

import (
	"context"
	"errors"
	"testing"

	"biometric-attendance/backend/internal/audit/domain"
)

// mockAuditRepo implements audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	ipExtractor := func(ctx context.Context) string {
		return "192.168.1.1"
	}
	logger := NewLogger(repo, ipExtractor)
	ctx := context.Background()

	logger.LogEvent(ctx, "lec-1", "session_started", "attendance_session", "ses-1", `{"course_id":"c-1"}`)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.ActorID != "lec-1" {
		t.Errorf("actor_id = %q, want %q", entry.ActorID, "lec-1")
	}
	if entry.Action != "session_started" {
		t.Errorf("action = %q, want %q", entry.Action, "session_started")
	}
	if entry.Resource != "attendance_session" {
		t.Errorf("resource = %q, want %q", entry.Resource, "attendance_session")
	}
	if entry.ResourceID != "ses-1" {
		t.Errorf("resource_id = %q, want %q", entry.ResourceID, "ses-1")
	}
	if entry.IP != "192.168.1.1" {
		t.Errorf("ip = %q, want %q", entry.IP, "192.168.1.1")
	}
	if entry.Metadata != `{"course_id":"c-1"}` {
		t.Errorf("metadata = %q", entry.Metadata)
	}
	if entry.ID == "" {
		t.Error("entry ID should be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("entry CreatedAt should be set")
	}
}

func TestLogger_LogEvent_IPFallback(t *testing.T) {
	tests := []struct {
		name        string
		ipExtractor IPExtractor
	}{
		{"nil extractor", nil},
		{"empty result", func(context.Context) string { return "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAuditRepo{}
			NewLogger(repo, tt.ipExtractor).LogEvent(context.Background(), "lec-1", "action", "resource", "", "")
			if len(repo.entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(repo.entries))
			}
			if repo.entries[0].IP != "unknown" {
				t.Errorf("ip = %q, want %q", repo.entries[0].IP, "unknown")
			}
		})
	}
}

func TestLogger_LogEvent_SystemActor(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, nil)

	logger.LogEvent(context.Background(), "", "session_ended", "attendance_session", "ses-1", "")

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].ActorID != SystemActorID {
		t.Errorf("actor_id = %q, want %q", repo.entries[0].ActorID, SystemActorID)
	}
}

func TestLogger_LogEvent_RepositoryError(t *testing.T) {
	repo := &mockAuditRepo{
		createErr: errors.New("database error"),
	}
	logger := NewLogger(repo, nil)

	// Should not panic or return error - best-effort logging
	logger.LogEvent(context.Background(), "lec-1", "action", "resource", "", "")
}

func TestLogger_LogEvent_NilRepo(t *testing.T) {
	logger := NewLogger(nil, nil)

	// Should not panic - no-op when repo is nil
	logger.LogEvent(context.Background(), "lec-1", "action", "resource", "", "")
}
