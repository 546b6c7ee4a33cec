package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"biometric-attendance/backend/internal/platform/rbac"
	"biometric-attendance/backend/internal/report"
	"biometric-attendance/backend/internal/server/middleware"
)

// courseScope authorizes the lecturer for the :course_id param and parses the from/to query.
func (h *handlers) courseScope(c *fiber.Ctx) (string, *report.DateRange, error) {
	courseID := utils.CopyString(strings.TrimSpace(c.Params("course_id")))
	c.Locals(middleware.LocalAuditResourceID, courseID)
	if _, err := rbac.RequireCourseOwner(c.UserContext(), h.svc.Authorizer, courseID); err != nil {
		return "", nil, err
	}
	r, err := report.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return "", nil, err
	}
	return courseID, r, nil
}

func (h *handlers) summary(c *fiber.Ctx) error {
	courseID, r, err := h.courseScope(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.svc.Reports.Summarize(c.UserContext(), courseID, r)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"course_id": courseID,
		"threshold": report.EligibilityThreshold,
		"students":  toSummaryViews(list),
	})
}

func (h *handlers) matrix(c *fiber.Ctx) error {
	courseID, r, err := h.courseScope(c)
	if err != nil {
		return fail(c, err)
	}
	var ids []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("student_id") {
		if id := strings.TrimSpace(string(raw)); id != "" {
			ids = append(ids, id)
		}
	}
	m, err := h.svc.Reports.BuildMatrix(c.UserContext(), courseID, r, ids...)
	if err != nil {
		return fail(c, err)
	}
	sessions, rows := toMatrixViews(m)
	return c.JSON(fiber.Map{
		"course_id": courseID,
		"sessions":  sessions,
		"rows":      rows,
	})
}

func (h *handlers) exportCSV(c *fiber.Ctx) error {
	courseID, r, err := h.courseScope(c)
	if err != nil {
		return fail(c, err)
	}
	list, err := h.svc.Reports.Summarize(c.UserContext(), courseID, r)
	if err != nil {
		return fail(c, err)
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, list); err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="attendance-%s.csv"`, courseID))
	return c.Send(buf.Bytes())
}
