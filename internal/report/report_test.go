package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	coursedomain "biometric-attendance/backend/internal/course/domain"
	identitydomain "biometric-attendance/backend/internal/identity/domain"
	presencedomain "biometric-attendance/backend/internal/presence/domain"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
)

var day0 = time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)

func sessions(n int) []*sessiondomain.Session {
	out := make([]*sessiondomain.Session, n)
	for i := range out {
		d := day0.AddDate(0, 0, i)
		out[i] = &sessiondomain.Session{
			ID:        fmt.Sprintf("s-%02d", i+1),
			CourseID:  "c-1",
			Date:      d,
			StartTime: d.Add(9 * time.Hour),
			Method:    sessiondomain.MethodFingerprint,
		}
	}
	return out
}

func present(studentID string, ses []*sessiondomain.Session, idx ...int) []*presencedomain.Record {
	out := make([]*presencedomain.Record, 0, len(idx))
	for _, i := range idx {
		out = append(out, &presencedomain.Record{
			ID:        fmt.Sprintf("r-%s-%d", studentID, i),
			StudentID: studentID,
			SessionID: ses[i].ID,
			Status:    presencedomain.StatusPresent,
		})
	}
	return out
}

func firstN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		present, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{17, 20, 85},
		{16, 20, 80},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13},
		{3, 3, 100},
	}
	for _, tt := range tests {
		if got := Percentage(tt.present, tt.total); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.present, tt.total, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	ses := sessions(20)
	students := []*identitydomain.Student{
		{ID: "a", Name: "Ada"},
		{ID: "b", Name: "Ben"},
		{ID: "c", Name: "Cy"},
	}
	var records []*presencedomain.Record
	records = append(records, present("a", ses, firstN(17)...)...)
	records = append(records, present("b", ses, firstN(16)...)...)
	// Duplicate and foreign rows must not inflate counts.
	records = append(records, present("a", ses, 0)...)
	records = append(records, &presencedomain.Record{StudentID: "c", SessionID: "other-course", Status: presencedomain.StatusPresent})

	got := Summarize(Snapshot{Sessions: ses, Students: students, Presence: records})
	want := []Summary{
		{StudentID: "a", Name: "Ada", Present: 17, Total: 20, Percentage: 85, Eligible: true},
		{StudentID: "b", Name: "Ben", Present: 16, Total: 20, Percentage: 80, Eligible: false},
		{StudentID: "c", Name: "Cy", Present: 0, Total: 20, Percentage: 0, Eligible: false},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSummarize_NoSessions(t *testing.T) {
	got := Summarize(Snapshot{Students: []*identitydomain.Student{{ID: "a", Name: "Ada"}}})
	if len(got) != 1 {
		t.Fatalf("students with no sessions must still be reported, got %d rows", len(got))
	}
	if got[0].Percentage != 0 || got[0].Eligible || got[0].Total != 0 {
		t.Errorf("row = %+v, want 0%% not eligible", got[0])
	}
}

func TestBuildMatrix_DefaultAbsent(t *testing.T) {
	ses := sessions(3)
	// Out of order input; the matrix sorts by date.
	shuffled := []*sessiondomain.Session{ses[2], ses[0], ses[1]}
	snap := Snapshot{
		Sessions: shuffled,
		Students: []*identitydomain.Student{{ID: "a", Name: "Ada"}},
		Presence: present("a", ses, 0, 2),
	}

	m := BuildMatrix(snap)
	if len(m.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(m.Sessions))
	}
	for i, want := range []string{"s-01", "s-02", "s-03"} {
		if m.Sessions[i].ID != want {
			t.Errorf("session %d = %s, want %s", i, m.Sessions[i].ID, want)
		}
	}
	if len(m.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(m.Rows))
	}
	row := m.Rows[0]
	wantStatuses := []presencedomain.Status{presencedomain.StatusPresent, presencedomain.StatusAbsent, presencedomain.StatusPresent}
	for i, want := range wantStatuses {
		if row.Statuses[i] != want {
			t.Errorf("status[%d] = %q, want %q", i, row.Statuses[i], want)
		}
	}
	if row.Present != 2 || row.Absent != 1 || row.Percentage != 67 || row.Eligible {
		t.Errorf("row counts = %+v, want 2 present 1 absent 67%%", row)
	}
}

func TestBuildMatrix_ConsistentWithSummarize(t *testing.T) {
	ses := sessions(20)
	students := []*identitydomain.Student{{ID: "a"}, {ID: "b"}}
	records := append(present("a", ses, firstN(17)...), present("b", ses, 3, 4)...)
	snap := Snapshot{Sessions: ses, Students: students, Presence: records}

	summaries := Summarize(snap)
	m := BuildMatrix(snap)
	for i := range summaries {
		if summaries[i].Percentage != m.Rows[i].Percentage || summaries[i].Eligible != m.Rows[i].Eligible {
			t.Errorf("student %s: summary %d%% vs matrix %d%%", summaries[i].StudentID, summaries[i].Percentage, m.Rows[i].Percentage)
		}
	}
}

func TestBuildMatrix_StudentSubset(t *testing.T) {
	snap := Snapshot{
		Sessions: sessions(2),
		Students: []*identitydomain.Student{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	}
	m := BuildMatrix(snap, "c", "a", "zzz", "c")
	if len(m.Rows) != 2 || m.Rows[0].StudentID != "c" || m.Rows[1].StudentID != "a" {
		t.Fatalf("rows = %+v, want c then a", m.Rows)
	}
	for _, r := range m.Rows {
		if r.Absent != 2 || r.Present != 0 {
			t.Errorf("row %s = %+v, want all absent", r.StudentID, r)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []Summary{
		{Name: "Ada Lovelace", Percentage: 85},
		{Name: "Ben, Jr.", Percentage: 80},
	})
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	want := "Student Name,Attendance,Eligibility\n" +
		"Ada Lovelace,85%,Allowed\n" +
		"\"Ben, Jr.\",80%,Not Allowed\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestParseDateRange(t *testing.T) {
	r, err := ParseDateRange("", "")
	if err != nil || r != nil {
		t.Errorf("empty range = %v, %v; want nil, nil", r, err)
	}
	r, err = ParseDateRange("2024-02-01", "")
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	if r.From == nil || !r.From.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) || r.To != nil {
		t.Errorf("range = %+v", r)
	}
	for _, bad := range [][2]string{{"2024-13-01", ""}, {"", "yesterday"}, {"2024-03-02", "2024-03-01"}} {
		if _, err := ParseDateRange(bad[0], bad[1]); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ParseDateRange(%q, %q) err = %v, want ErrInvalidRange", bad[0], bad[1], err)
		}
	}
}

type stubCourses map[string]*coursedomain.Course

func (s stubCourses) GetByID(ctx context.Context, id string) (*coursedomain.Course, error) {
	return s[id], nil
}

type stubSessions struct {
	list     []*sessiondomain.Session
	from, to *time.Time
}

func (s *stubSessions) ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*sessiondomain.Session, error) {
	s.from, s.to = from, to
	return s.list, nil
}

type stubStudents struct {
	byOption  []*identitydomain.Student
	attending []*identitydomain.Student
	calls     []string
}

func (s *stubStudents) ListByOption(ctx context.Context, optionID string) ([]*identitydomain.Student, error) {
	s.calls = append(s.calls, "option:"+optionID)
	return s.byOption, nil
}

func (s *stubStudents) ListAttendingCourse(ctx context.Context, courseID string) ([]*identitydomain.Student, error) {
	s.calls = append(s.calls, "attending:"+courseID)
	return s.attending, nil
}

type stubPresence struct {
	list []*presencedomain.Record
	err  error
}

func (s *stubPresence) ListByCourse(ctx context.Context, courseID string, from, to *time.Time) ([]*presencedomain.Record, error) {
	return s.list, s.err
}

func TestService_WithStoreSource(t *testing.T) {
	ses := sessions(3)
	students := &stubStudents{
		byOption: []*identitydomain.Student{{ID: "b", RegNo: "REG/002"}, {ID: "a", RegNo: "REG/001"}},
	}
	sessionStore := &stubSessions{list: ses}
	src := &StoreSource{
		Courses:  stubCourses{"c-1": {ID: "c-1", OptionID: "opt-1"}, "c-2": {ID: "c-2"}},
		Sessions: sessionStore,
		Students: students,
		Presence: &stubPresence{list: present("a", ses, 0, 1, 2)},
	}
	svc := NewService(src)
	ctx := context.Background()

	rng, _ := ParseDateRange("2024-02-01", "2024-02-29")
	rows, err := svc.Summarize(ctx, "c-1", rng)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(rows) != 2 || rows[0].StudentID != "a" || rows[0].Percentage != 100 || rows[1].Percentage != 0 {
		t.Errorf("rows = %+v, want a at 100%% then b at 0%%", rows)
	}
	if sessionStore.from == nil || sessionStore.to == nil {
		t.Error("date range should be passed to the session store")
	}

	if _, err := svc.BuildMatrix(ctx, "c-2", nil); err != nil {
		t.Fatalf("BuildMatrix: %v", err)
	}
	if last := students.calls[len(students.calls)-1]; last != "attending:c-2" {
		t.Errorf("cohort lookup = %q, want attending fallback for course without option", last)
	}

	if _, err := svc.Summarize(ctx, "c-404", nil); !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("unknown course err = %v, want ErrCourseNotFound", err)
	}

	src.Presence = &stubPresence{err: errors.New("db down")}
	if _, err := svc.Summarize(ctx, "c-1", nil); err == nil || errors.Is(err, ErrCourseNotFound) {
		t.Errorf("store failure err = %v, want wrapped store error", err)
	}
}
