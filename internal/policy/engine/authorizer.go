package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	coursedomain "biometric-attendance/backend/internal/course/domain"
	"biometric-attendance/backend/internal/server/middleware"
)

const (
	policyPackage = "attendance.course_access"
	allowQuery    = "data.attendance.course_access.allow"
)

// Default Rego policy: only the course's assigned lecturer may take or read its attendance.
const defaultRegoPolicy = `package attendance.course_access

default allow = false

allow if {
	input.lecturer.id != ""
	input.course.lecturer_id == input.lecturer.id
}
`

// CourseReader loads courses. Missing courses are (nil, nil).
type CourseReader interface {
	GetByID(ctx context.Context, id string) (*coursedomain.Course, error)
}

// OPAAuthorizer answers course access questions with an OPA Rego policy.
type OPAAuthorizer struct {
	courses CourseReader
	query   rego.PreparedEvalQuery
}

// NewOPAAuthorizer compiles the course access policy. policy may be empty to use the default.
func NewOPAAuthorizer(ctx context.Context, courses CourseReader, policy string) (*OPAAuthorizer, error) {
	if policy == "" {
		policy = defaultRegoPolicy
	}
	compiler, err := ast.CompileModules(map[string]string{"course_access.rego": policy})
	if err != nil {
		return nil, fmt.Errorf("compile %s policy: %w", policyPackage, err)
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Compiler(compiler),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare %s policy: %w", policyPackage, err)
	}
	return &OPAAuthorizer{courses: courses, query: q}, nil
}

// LecturerOwnsCourse reports whether lecturerID may run attendance for courseID.
// The lecturer's department from ctx, when present, is passed to the policy as input.lecturer.department_id.
// Unknown courses are false. Only course lookup failures are returned as errors.
func (a *OPAAuthorizer) LecturerOwnsCourse(ctx context.Context, lecturerID, courseID string) (bool, error) {
	if lecturerID == "" || courseID == "" {
		return false, nil
	}
	course, err := a.courses.GetByID(ctx, courseID)
	if err != nil {
		return false, fmt.Errorf("load course: %w", err)
	}
	if course == nil {
		return false, nil
	}
	departmentID, _ := middleware.GetDepartmentID(ctx)
	allowed, err := a.eval(ctx, buildInput(lecturerID, departmentID, course))
	if err != nil {
		log.Printf("policy: evaluation failed for course %s: %v, denying", courseID, err)
		return false, nil
	}
	return allowed, nil
}

// HealthCheck verifies the compiled policy evaluates: it must allow the assigned lecturer of their own department.
// Does not call the course repository.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	course := &coursedomain.Course{ID: "health-course", LecturerID: "health-lecturer", DepartmentID: "health-department"}
	allowed, err := a.eval(ctx, buildInput("health-lecturer", "health-department", course))
	if err != nil {
		return fmt.Errorf("eval policy: %w", err)
	}
	if !allowed {
		return fmt.Errorf("policy denied the assigned lecturer")
	}
	return nil
}

func (a *OPAAuthorizer) eval(ctx context.Context, input map[string]interface{}) (bool, error) {
	rs, err := a.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return v, nil
}

func buildInput(lecturerID, departmentID string, course *coursedomain.Course) map[string]interface{} {
	return map[string]interface{}{
		"lecturer": map[string]interface{}{
			"id":            lecturerID,
			"department_id": departmentID,
		},
		"course": map[string]interface{}{
			"id":            course.ID,
			"lecturer_id":   course.LecturerID,
			"department_id": course.DepartmentID,
			"option_id":     course.OptionID,
		},
	}
}
