// Package report computes attendance summaries and the student by session matrix from a store snapshot.
// The functions here are pure; Service loads the snapshot.
package report

import (
	"math"
	"sort"
	"time"

	coursedomain "biometric-attendance/backend/internal/course/domain"
	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
)

// EligibilityThreshold is the attendance percentage required for exam admission.
const EligibilityThreshold = 85

// Snapshot is everything a report needs for one course, read once.
type Snapshot struct {
	Course   *coursedomain.Course
	Sessions []*sessiondomain.Session
	// Students is the course cohort.
	Students []*identitydomain.Student
	Presence []*presencedomain.Record
}

// Summary is one student's attendance over the snapshot's sessions.
type Summary struct {
	StudentID  string
	RegNo      string
	Name       string
	Present    int
	Total      int
	Percentage int
	Eligible   bool
}

// MatrixSession is a matrix column.
type MatrixSession struct {
	ID        string
	Date      time.Time
	StartTime time.Time
	Method    sessiondomain.Method
}

// MatrixRow is one student's statuses, aligned with Matrix.Sessions.
type MatrixRow struct {
	StudentID  string
	RegNo      string
	Name       string
	Statuses   []presencedomain.Status
	Present    int
	Absent     int
	Percentage int
	Eligible   bool
}

// Matrix is the dense student by session grid. A missing presence record is absent.
type Matrix struct {
	Sessions []MatrixSession
	Rows     []MatrixRow
}

// Percentage returns round(present/total*100), or 0 when total is 0.
func Percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(present) / float64(total) * 100))
}

// IsEligible reports whether pct meets EligibilityThreshold.
func IsEligible(pct int) bool {
	return pct >= EligibilityThreshold
}

// Summarize returns one Summary per cohort student, in cohort order. Students with no sessions get 0%.
func Summarize(s Snapshot) []Summary {
	total := len(s.Sessions)
	attended := attendance(s)
	out := make([]Summary, 0, len(s.Students))
	for _, st := range s.Students {
		if st == nil {
			continue
		}
		present := len(attended[st.ID])
		pct := Percentage(present, total)
		out = append(out, Summary{
			StudentID:  st.ID,
			RegNo:      st.RegNo,
			Name:       st.Name,
			Present:    present,
			Total:      total,
			Percentage: pct,
			Eligible:   IsEligible(pct),
		})
	}
	return out
}

// BuildMatrix returns the grid of sessions, date ascending, by students. With studentIDs only those cohort
// students are included, in the given order; unknown ids are skipped.
func BuildMatrix(s Snapshot, studentIDs ...string) Matrix {
	sessions := sortedSessions(s.Sessions)
	attended := attendance(s)

	m := Matrix{Sessions: make([]MatrixSession, len(sessions))}
	for i, ses := range sessions {
		m.Sessions[i] = MatrixSession{ID: ses.ID, Date: ses.Date, StartTime: ses.StartTime, Method: ses.Method}
	}

	for _, st := range selectStudents(s.Students, studentIDs) {
		row := MatrixRow{
			StudentID: st.ID,
			RegNo:     st.RegNo,
			Name:      st.Name,
			Statuses:  make([]presencedomain.Status, len(sessions)),
		}
		for i, ses := range sessions {
			if attended[st.ID][ses.ID] {
				row.Statuses[i] = presencedomain.StatusPresent
				row.Present++
			} else {
				row.Statuses[i] = presencedomain.StatusAbsent
				row.Absent++
			}
		}
		row.Percentage = Percentage(row.Present, len(sessions))
		row.Eligible = IsEligible(row.Percentage)
		m.Rows = append(m.Rows, row)
	}
	return m
}

// attendance maps student id to the set of snapshot session ids they were present at.
// Records for sessions outside the snapshot are ignored.
func attendance(s Snapshot) map[string]map[string]bool {
	inWindow := make(map[string]bool, len(s.Sessions))
	for _, ses := range s.Sessions {
		if ses != nil {
			inWindow[ses.ID] = true
		}
	}
	out := make(map[string]map[string]bool)
	for _, r := range s.Presence {
		if r == nil || r.Status != presencedomain.StatusPresent || !inWindow[r.SessionID] {
			continue
		}
		if out[r.StudentID] == nil {
			out[r.StudentID] = make(map[string]bool)
		}
		out[r.StudentID][r.SessionID] = true
	}
	return out
}

func sortedSessions(in []*sessiondomain.Session) []*sessiondomain.Session {
	out := make([]*sessiondomain.Session, 0, len(in))
	for _, s := range in {
		if s != nil {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func selectStudents(cohort []*identitydomain.Student, ids []string) []*identitydomain.Student {
	if len(ids) == 0 {
		out := make([]*identitydomain.Student, 0, len(cohort))
		for _, st := range cohort {
			if st != nil {
				out = append(out, st)
			}
		}
		return out
	}
	byID := make(map[string]*identitydomain.Student, len(cohort))
	for _, st := range cohort {
		if st != nil {
			byID[st.ID] = st
		}
	}
	out := make([]*identitydomain.Student, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if st, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, st)
		}
	}
	return out
}
