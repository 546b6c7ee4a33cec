package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"biometric-attendance/backend/internal/audit"
)

// LocalAuditResourceID is the Locals key a handler sets to name the session or course it acted on.
const LocalAuditResourceID = "audit_resource_id"

type requestMetadata struct {
	Method string `json:"method"`
	Route  string `json:"route"`
	Status int    `json:"status"`
}

// Audit returns a handler that records an audit entry after each authenticated request.
// skipRoutes holds "METHOD /route" patterns not to audit (e.g. status polling, or actions the services
// already audit). Only writes when a lecturer is set. Best-effort.
func Audit(logger audit.AuditLogger, skipRoutes map[string]bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if logger == nil {
			return err
		}
		lecturerID := LecturerID(c)
		if lecturerID == "" {
			return err
		}
		route := c.Route().Path
		if skipRoutes[c.Method()+" "+route] {
			return err
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ar := audit.ParseRoute(c.Method(), route)
		resourceID, _ := c.Locals(LocalAuditResourceID).(string)
		meta, _ := json.Marshal(requestMetadata{Method: c.Method(), Route: route, Status: status})
		// Locals may hold strings backed by the request buffer, which fasthttp reuses.
		logger.LogEvent(c.UserContext(), utils.CopyString(lecturerID), ar.Action, ar.Resource, utils.CopyString(resourceID), string(meta))
		return err
	}
}
