package engine

import (
	"context"
	"errors"
	"testing"

	coursedomain "biometric-attendance/backend/internal/course/domain"
	"biometric-attendance/backend/internal/server/middleware"
)

// mockCourseRepo implements CourseReader for tests.
type mockCourseRepo struct {
	courses map[string]*coursedomain.Course
	err     error
}

func (m *mockCourseRepo) GetByID(ctx context.Context, id string) (*coursedomain.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.courses[id], nil
}

func newTestAuthorizer(t *testing.T, repo CourseReader, policy string) *OPAAuthorizer {
	t.Helper()
	a, err := NewOPAAuthorizer(context.Background(), repo, policy)
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	return a
}

func TestOPAAuthorizer_HealthCheck(t *testing.T) {
	// HealthCheck does not use the course repo.
	a := newTestAuthorizer(t, nil, "")
	if err := a.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAAuthorizer_LecturerOwnsCourse(t *testing.T) {
	repo := &mockCourseRepo{courses: map[string]*coursedomain.Course{
		"c-1": {ID: "c-1", Code: "CSC 401", LecturerID: "lec-1", DepartmentID: "d-1"},
		"c-2": {ID: "c-2", Code: "CSC 402"},
	}}
	a := newTestAuthorizer(t, repo, "")

	tests := []struct {
		name       string
		lecturerID string
		courseID   string
		want       bool
	}{
		{"assigned lecturer", "lec-1", "c-1", true},
		{"other lecturer", "lec-2", "c-1", false},
		{"unassigned course", "lec-1", "c-2", false},
		{"unknown course", "lec-1", "c-404", false},
		{"empty lecturer", "", "c-1", false},
		{"empty course", "lec-1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.LecturerOwnsCourse(context.Background(), tt.lecturerID, tt.courseID)
			if err != nil {
				t.Fatalf("LecturerOwnsCourse: %v", err)
			}
			if got != tt.want {
				t.Errorf("LecturerOwnsCourse(%q, %q) = %v, want %v", tt.lecturerID, tt.courseID, got, tt.want)
			}
		})
	}
}

func TestOPAAuthorizer_RepoError(t *testing.T) {
	a := newTestAuthorizer(t, &mockCourseRepo{err: errors.New("db down")}, "")
	if _, err := a.LecturerOwnsCourse(context.Background(), "lec-1", "c-1"); err == nil {
		t.Fatal("expected error when course lookup fails")
	}
}

func TestOPAAuthorizer_CustomPolicy(t *testing.T) {
	// Department-wide access: any lecturer of the course's department is allowed.
	policy := `package attendance.course_access

default allow = false

allow if {
	input.lecturer.department_id != ""
	input.course.department_id == input.lecturer.department_id
}
`
	repo := &mockCourseRepo{courses: map[string]*coursedomain.Course{
		"c-1": {ID: "c-1", LecturerID: "lec-1", DepartmentID: "d-1"},
		"c-2": {ID: "c-2", LecturerID: "lec-1", DepartmentID: "d-2"},
	}}
	a := newTestAuthorizer(t, repo, policy)

	inD1 := middleware.WithLecturer(context.Background(), "lec-9", "d-1")
	if ok, _ := a.LecturerOwnsCourse(inD1, "lec-9", "c-1"); !ok {
		t.Error("custom policy should allow department course")
	}
	if ok, _ := a.LecturerOwnsCourse(inD1, "lec-9", "c-2"); ok {
		t.Error("custom policy should deny other department")
	}
	if ok, _ := a.LecturerOwnsCourse(context.Background(), "lec-1", "c-1"); ok {
		t.Error("custom policy should deny a lecturer without a department")
	}
	if err := a.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}
}

func TestOPAAuthorizer_HealthCheckFailsOnDenyAll(t *testing.T) {
	a := newTestAuthorizer(t, nil, "package attendance.course_access\n\ndefault allow = false\n")
	if err := a.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail when the policy denies the assigned lecturer")
	}
}

func TestNewOPAAuthorizer_InvalidPolicy(t *testing.T) {
	if _, err := NewOPAAuthorizer(context.Background(), nil, "package broken\nallow if {"); err == nil {
		t.Fatal("expected compile error")
	}
}
