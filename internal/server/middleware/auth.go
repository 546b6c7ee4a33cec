package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const bearerPrefix = "bearer "

// LocalLecturerID is the fiber Locals key holding the authenticated lecturer id.
const LocalLecturerID = "lecturer_id"

// AccessValidator validates an access token and returns the lecturer it was issued to.
type AccessValidator interface {
	ValidateAccess(token string) (lecturerID, departmentID string, err error)
}

// Bearer returns a handler that validates the Authorization Bearer token and stores the lecturer in
// Locals and in the user context. Requests without a valid token get 401.
func Bearer(tokens AccessValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearer(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return unauthenticated(c)
		}
		lecturerID, departmentID, err := tokens.ValidateAccess(token)
		if err != nil || lecturerID == "" {
			return unauthenticated(c)
		}
		c.Locals(LocalLecturerID, lecturerID)
		c.SetUserContext(WithLecturer(c.UserContext(), lecturerID, departmentID))
		return c.Next()
	}
}

// LecturerID returns the lecturer set by Bearer, or "".
func LecturerID(c *fiber.Ctx) string {
	v, _ := c.Locals(LocalLecturerID).(string)
	return v
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"status":  "error",
		"message": "missing or invalid authorization",
	})
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(header string) string {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
