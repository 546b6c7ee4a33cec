package domain

import "time"

// Event types emitted by the attendance engine.
const (
	EventSessionStarted = "session_started"
	EventSessionEnded   = "session_ended"
	EventPresenceMarked = "presence_marked"
	EventCheckinFailed  = "checkin_failed"
)

// KnownType reports whether t is one of the event types above.
func KnownType(t string) bool {
	switch t {
	case EventSessionStarted, EventSessionEnded, EventPresenceMarked, EventCheckinFailed:
		return true
	}
	return false
}

// Event is a single attendance event. Fields other than Type and OccurredAt are optional.
type Event struct {
	Type       string            `json:"eventType"`
	CourseID   string            `json:"courseId,omitempty"`
	SessionID  string            `json:"sessionId,omitempty"`
	LecturerID string            `json:"lecturerId,omitempty"`
	StudentID  string            `json:"studentId,omitempty"`
	Method     string            `json:"method,omitempty"`
	Outcome    string            `json:"outcome,omitempty"`
	OccurredAt time.Time         `json:"occurredAt"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
