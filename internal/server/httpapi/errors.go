package httpapi

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"biometric-attendance/backend/internal/biometric/face"
	"biometric-attendance/backend/internal/biometric/fingerprint"
	"biometric-attendance/backend/internal/checkin"
	"biometric-attendance/backend/internal/platform/rbac"
	"biometric-attendance/backend/internal/report"
	sessionservice "biometric-attendance/backend/internal/session/service"
)

var errMalformedBody = errors.New("malformed request body")

// mapError returns the HTTP status and client message for a service error.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, sessionservice.ErrConflict), errors.Is(err, checkin.ErrSessionClosed):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, sessionservice.ErrForbidden), errors.Is(err, rbac.ErrNotCourseOwner):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, rbac.ErrUnauthenticated):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, sessionservice.ErrNotFound),
		errors.Is(err, checkin.ErrSessionNotFound),
		errors.Is(err, checkin.ErrUnknownIdentity),
		errors.Is(err, report.ErrCourseNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, sessionservice.ErrInvalidArgument),
		errors.Is(err, checkin.ErrInvalidCredential),
		errors.Is(err, face.ErrInvalidImage),
		errors.Is(err, report.ErrInvalidRange),
		errors.Is(err, errMalformedBody):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, face.ErrRecognitionFailed):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, fingerprint.ErrDeviceUnavailable), errors.Is(err, sessionservice.ErrMethodUnavailable):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.Is(err, checkin.ErrStore):
		return fiber.StatusInternalServerError, "attendance could not be saved, please retry"
	default:
		return fiber.StatusInternalServerError, "internal error"
	}
}

// fail writes err as {status:"error", message}. Server errors are logged with the underlying cause.
func fail(c *fiber.Ctx, err error) error {
	code, msg := mapError(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("httpapi: %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": msg})
}

func failStatus(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": msg})
}
