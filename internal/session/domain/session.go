package domain

import (
	"strings"
	"time"
)

// Method is the biometric method a session accepts check-ins with.
type Method string

const (
	MethodFingerprint     Method = "fingerprint"
	MethodFaceRecognition Method = "face_recognition"
)

// ParseMethod returns the Method for s. ok is false when s is not a known method.
func ParseMethod(s string) (m Method, ok bool) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodFingerprint:
		return MethodFingerprint, true
	case MethodFaceRecognition:
		return MethodFaceRecognition, true
	}
	return "", false
}

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m == MethodFingerprint || m == MethodFaceRecognition
}

// Session is one attendance-taking window for a course. At most one session per course is open.
type Session struct {
	ID         string
	CourseID   string
	LecturerID string
	OptionID   string // empty when not scoped to a cohort
	// Date is the calendar date (UTC) of StartTime.
	Date      time.Time
	StartTime time.Time
	EndTime   *time.Time // nil while open
	Method    Method
}

// IsOpen reports whether the session still accepts check-ins.
func (s *Session) IsOpen() bool {
	return s != nil && s.EndTime == nil
}

// OwnedBy reports whether lecturerID started the session.
func (s *Session) OwnedBy(lecturerID string) bool {
	return s != nil && lecturerID != "" && s.LecturerID == lecturerID
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
