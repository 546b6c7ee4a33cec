package httpapi

import (
	"time"

	"biometric-attendance/backend/internal/biometric"
	"biometric-attendance/backend/internal/biometric/fingerprint"
	"biometric-attendance/backend/internal/checkin"
	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	"biometric-attendance/backend/internal/report"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
	sessionservice "biometric-attendance/backend/internal/session/service"
)

const dateLayout = "2006-01-02"

type startSessionRequest struct {
	LecturerID string `json:"lecturer_id"`
	CourseID   string `json:"course_id" validate:"required"`
	OptionID   string `json:"option_id"`
	Method     string `json:"biometric_method"`
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type fingerprintRequest struct {
	SessionID     string              `json:"session_id" validate:"required"`
	FingerprintID biometric.FlexibleID `json:"fingerprint_id" validate:"required"`
}

type studentView struct {
	ID    string `json:"id"`
	RegNo string `json:"reg_no"`
	Name  string `json:"name"`
}

type markResponse struct {
	Status     string       `json:"status"`
	Student    *studentView `json:"student,omitempty"`
	Message    string       `json:"message"`
	Confidence *float64     `json:"confidence,omitempty"`
}

type sessionView struct {
	ID         string  `json:"id"`
	CourseID   string  `json:"course_id"`
	LecturerID string  `json:"lecturer_id"`
	OptionID   string  `json:"option_id,omitempty"`
	Date       string  `json:"date"`
	StartTime  string  `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Method     string  `json:"biometric_method"`
	Open       bool    `json:"open"`
}

type attendeeView struct {
	StudentID  string   `json:"student_id"`
	RegNo      string   `json:"reg_no"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Method     string   `json:"method"`
	RecordedAt string   `json:"recorded_at"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type pollerView struct {
	State             string `json:"state"`
	LastPollAt        string `json:"last_poll_at,omitempty"`
	LastFingerprintID string `json:"last_fingerprint_id,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	Identified        int    `json:"identified"`
}

type statusResponse struct {
	Session   sessionView    `json:"session"`
	Attendees []attendeeView `json:"attendees"`
	Poller    *pollerView    `json:"poller,omitempty"`
}

type summaryView struct {
	StudentID  string `json:"student_id"`
	RegNo      string `json:"reg_no"`
	Name       string `json:"name"`
	Present    int    `json:"present"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Eligible   bool   `json:"eligible"`
}

type matrixSessionView struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	Method    string `json:"method"`
}

type matrixRowView struct {
	StudentID  string   `json:"student_id"`
	RegNo      string   `json:"reg_no"`
	Name       string   `json:"name"`
	Statuses   []string `json:"statuses"`
	Present    int      `json:"present"`
	Absent     int      `json:"absent"`
	Percentage int      `json:"percentage"`
	Eligible   bool     `json:"eligible"`
}

func toStudentView(s *identitydomain.Student) *studentView {
	if s == nil {
		return nil
	}
	return &studentView{ID: s.ID, RegNo: s.RegNo, Name: s.Name}
}

func toMarkResponse(o *checkin.Outcome) markResponse {
	resp := markResponse{Student: toStudentView(o.Student), Confidence: o.Confidence}
	name := ""
	if o.Student != nil {
		name = o.Student.Name
	}
	switch o.Status {
	case checkin.AlreadyMarked:
		resp.Status = "already"
		resp.Message = name + " is already marked present"
	default:
		resp.Status = "success"
		resp.Message = name + " marked present"
	}
	return resp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toSessionView(s *sessiondomain.Session) sessionView {
	v := sessionView{
		ID:         s.ID,
		CourseID:   s.CourseID,
		LecturerID: s.LecturerID,
		OptionID:   s.OptionID,
		Date:       s.Date.Format(dateLayout),
		StartTime:  formatTime(s.StartTime),
		Method:     string(s.Method),
		Open:       s.IsOpen(),
	}
	if s.EndTime != nil {
		end := formatTime(*s.EndTime)
		v.EndTime = &end
	}
	return v
}

func toAttendeeViews(list []*presencedomain.Attendee) []attendeeView {
	out := make([]attendeeView, 0, len(list))
	for _, a := range list {
		out = append(out, attendeeView{
			StudentID:  a.StudentID,
			RegNo:      a.RegNo,
			Name:       a.StudentName,
			Status:     string(a.Status),
			Method:     string(a.Method),
			RecordedAt: formatTime(a.RecordedAt),
			Confidence: a.Confidence,
		})
	}
	return out
}

func toPollerView(s *fingerprint.Status) *pollerView {
	if s == nil {
		return nil
	}
	v := &pollerView{
		State:             string(s.State),
		LastFingerprintID: s.LastFingerprintID,
		LastError:         s.LastError,
		Identified:        s.Identified,
	}
	if !s.LastPollAt.IsZero() {
		v.LastPollAt = formatTime(s.LastPollAt)
	}
	return v
}

func toStatusResponse(st *sessionservice.Status) statusResponse {
	return statusResponse{
		Session:   toSessionView(st.Session),
		Attendees: toAttendeeViews(st.Attendees),
		Poller:    toPollerView(st.Poller),
	}
}

func toSummaryViews(list []report.Summary) []summaryView {
	out := make([]summaryView, 0, len(list))
	for _, s := range list {
		out = append(out, summaryView{
			StudentID:  s.StudentID,
			RegNo:      s.RegNo,
			Name:       s.Name,
			Present:    s.Present,
			Total:      s.Total,
			Percentage: s.Percentage,
			Eligible:   s.Eligible,
		})
	}
	return out
}

func toMatrixViews(m *report.Matrix) ([]matrixSessionView, []matrixRowView) {
	sessions := make([]matrixSessionView, 0, len(m.Sessions))
	for _, s := range m.Sessions {
		sessions = append(sessions, matrixSessionView{
			ID:        s.ID,
			Date:      s.Date.Format(dateLayout),
			StartTime: formatTime(s.StartTime),
			Method:    string(s.Method),
		})
	}
	rows := make([]matrixRowView, 0, len(m.Rows))
	for _, r := range m.Rows {
		statuses := make([]string, len(r.Statuses))
		for i, st := range r.Statuses {
			statuses[i] = string(st)
		}
		rows = append(rows, matrixRowView{
			StudentID:  r.StudentID,
			RegNo:      r.RegNo,
			Name:       r.Name,
			Statuses:   statuses,
			Present:    r.Present,
			Absent:     r.Absent,
			Percentage: r.Percentage,
			Eligible:   r.Eligible,
		})
	}
	return sessions, rows
}
