package httpapi

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"biometric-attendance/backend/internal/biometric/face"
	"biometric-attendance/backend/internal/server/middleware"
	sessionservice "biometric-attendance/backend/internal/session/service"
)

// parse decodes the JSON body into dst and validates it.
func (h *handlers) parse(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", sessionservice.ErrInvalidArgument, err)
	}
	return nil
}

func (h *handlers) startSession(c *fiber.Ctx) error {
	var req startSessionRequest
	if err := h.parse(c, &req); err != nil {
		return fail(c, err)
	}
	lecturerID := middleware.LecturerID(c)
	if req.LecturerID != "" && strings.TrimSpace(req.LecturerID) != lecturerID {
		return failStatus(c, fiber.StatusForbidden, "lecturer_id does not match the authenticated lecturer")
	}
	ses, err := h.svc.Sessions.StartSession(c.UserContext(), sessionservice.StartRequest{
		LecturerID: lecturerID,
		CourseID:   req.CourseID,
		OptionID:   req.OptionID,
		Method:     req.Method,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "success", "session_id": ses.ID})
}

func (h *handlers) endSession(c *fiber.Ctx) error {
	var req sessionRequest
	if err := h.parse(c, &req); err != nil {
		return fail(c, err)
	}
	if _, err := h.svc.Sessions.EndSession(c.UserContext(), req.SessionID, middleware.LecturerID(c)); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "success"})
}

func (h *handlers) sessionStatus(c *fiber.Ctx) error {
	var req sessionRequest
	if err := h.parse(c, &req); err != nil {
		return fail(c, err)
	}
	st, err := h.svc.Sessions.GetStatus(c.UserContext(), req.SessionID, middleware.LecturerID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toStatusResponse(st))
}

func (h *handlers) markByFingerprint(c *fiber.Ctx) error {
	var req fingerprintRequest
	if err := h.parse(c, &req); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.LocalAuditResourceID, req.SessionID)
	out, err := h.svc.Sessions.MarkByFingerprint(c.UserContext(), req.SessionID, middleware.LecturerID(c), req.FingerprintID.String())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toMarkResponse(out))
}

// markByFace accepts multipart form data with a session_id field and exactly one image file.
func (h *handlers) markByFace(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, fmt.Errorf("%w: expected multipart form data", errMalformedBody))
	}
	sessionID := ""
	if vals := form.Value["session_id"]; len(vals) == 1 {
		sessionID = strings.TrimSpace(vals[0])
	}
	if sessionID == "" {
		return fail(c, fmt.Errorf("%w: session_id is required", sessionservice.ErrInvalidArgument))
	}
	files := form.File["image"]
	if len(files) != 1 {
		return fail(c, fmt.Errorf("%w: exactly one image file is required", face.ErrInvalidImage))
	}
	fh := files[0]
	if fh.Size > h.maxImage {
		return fail(c, fmt.Errorf("%w: %d bytes exceeds limit of %d", face.ErrInvalidImage, fh.Size, h.maxImage))
	}
	f, err := fh.Open()
	if err != nil {
		return fail(c, fmt.Errorf("%w: %v", face.ErrInvalidImage, err))
	}
	data, err := io.ReadAll(io.LimitReader(f, h.maxImage+1))
	_ = f.Close()
	if err != nil {
		return fail(c, fmt.Errorf("%w: %v", face.ErrInvalidImage, err))
	}

	c.Locals(middleware.LocalAuditResourceID, sessionID)
	out, err := h.svc.Sessions.MarkByFace(c.UserContext(), sessionID, middleware.LecturerID(c), face.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toMarkResponse(out))
}

// faceLimiter bounds face uploads per lecturer, since each one runs the recognizer.
func faceLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := middleware.LecturerID(c); id != "" {
				return "lecturer:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return failStatus(c, fiber.StatusTooManyRequests, "too many face check-ins, slow down")
		},
	})
}
