package domain

import (
	"time"

	sessiondomain "biometric-attendance/backend/internal/session/domain"
)

// Status of a presence record. Only present is ever written; absence is implicit.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Record marks one student present at one session. Unique per (StudentID, SessionID).
type Record struct {
	ID         string
	StudentID  string
	SessionID  string
	Status     Status
	Method     sessiondomain.Method
	RecordedAt time.Time
	// Confidence is the recognizer score for face check-ins; nil otherwise.
	Confidence *float64
}

// Attendee is a presence record joined with the student's display fields.
type Attendee struct {
	Record
	RegNo       string
	StudentName string
}
