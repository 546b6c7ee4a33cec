// Package httpapi is the lecturer-facing HTTP API: attendance actions under /api/attendance and
// read-only reports under /api/reports.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"biometric-attendance/backend/internal/audit"
	"biometric-attendance/backend/internal/biometric/face"
	"biometric-attendance/backend/internal/checkin"
	"biometric-attendance/backend/internal/platform/rbac"
	"biometric-attendance/backend/internal/report"
	"biometric-attendance/backend/internal/server/middleware"
	sessiondomain "biometric-attendance/backend/internal/session/domain"
	sessionservice "biometric-attendance/backend/internal/session/service"
)

const (
	defaultRequestTimeout = 30 * time.Second
	// multipart overhead allowed on top of the image limit
	bodySlack            = 512 << 10
	defaultFaceRateLimit = 30
)

// SessionService is the session lifecycle and check-in surface the handlers call.
type SessionService interface {
	StartSession(ctx context.Context, req sessionservice.StartRequest) (*sessiondomain.Session, error)
	EndSession(ctx context.Context, sessionID, requester string) (*sessiondomain.Session, error)
	GetStatus(ctx context.Context, sessionID, requester string) (*sessionservice.Status, error)
	MarkByFingerprint(ctx context.Context, sessionID, requester, fingerprintID string) (*checkin.Outcome, error)
	MarkByFace(ctx context.Context, sessionID, requester string, img face.Image) (*checkin.Outcome, error)
}

// ReportService builds course reports.
type ReportService interface {
	Summarize(ctx context.Context, courseID string, r *report.DateRange) ([]report.Summary, error)
	BuildMatrix(ctx context.Context, courseID string, r *report.DateRange, studentIDs ...string) (*report.Matrix, error)
}

// CourseAuthorizer answers whether a lecturer owns a course.
type CourseAuthorizer = rbac.CourseOwnershipChecker

// ReadinessChecker reports whether the service can take traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Config holds HTTP settings.
type Config struct {
	CSRFCookieSecure bool
	// MaxImageBytes caps a face upload; <= 0 uses face.DefaultMaxImageBytes.
	MaxImageBytes  int64
	RequestTimeout time.Duration
	// FaceRateLimit is the number of face uploads a lecturer may send per minute; <= 0 uses 30.
	FaceRateLimit int
}

// Services are the handlers' collaborators. Audit and Health may be nil.
type Services struct {
	Sessions   SessionService
	Reports    ReportService
	Authorizer CourseAuthorizer
	Tokens     middleware.AccessValidator
	Audit      audit.AuditLogger
	Health     ReadinessChecker
}

// auditSkip lists routes the middleware does not audit: status polling, and lifecycle actions the
// session manager records itself.
var auditSkip = map[string]bool{
	"POST /api/attendance/session_status": true,
	"POST /api/attendance/start_session":  true,
	"POST /api/attendance/end_session":    true,
}

type handlers struct {
	svc      Services
	validate *validator.Validate
	maxImage int64
}

// NewApp builds the fiber app with middleware in order: request id, recover, request context,
// tracing, anti-forgery, bearer auth, audit, handler.
func NewApp(cfg Config, svc Services) *fiber.App {
	if cfg.MaxImageBytes <= 0 || cfg.MaxImageBytes > face.DefaultMaxImageBytes {
		cfg.MaxImageBytes = face.DefaultMaxImageBytes
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.FaceRateLimit <= 0 {
		cfg.FaceRateLimit = defaultFaceRateLimit
	}
	h := &handlers{svc: svc, validate: validator.New(), maxImage: cfg.MaxImageBytes}

	app := fiber.New(fiber.Config{
		AppName:      "attendance-engine",
		BodyLimit:    int(cfg.MaxImageBytes) + bodySlack,
		ErrorHandler: errorHandler,
	})
	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(middleware.RequestContext(cfg.RequestTimeout))
	app.Use(middleware.Tracing())
	app.Use(middleware.CSRF(cfg.CSRFCookieSecure))

	app.Get("/healthz", h.healthz)
	app.Get("/api/csrf", h.csrfToken)

	protected := []fiber.Handler{
		middleware.Bearer(svc.Tokens),
		middleware.Audit(svc.Audit, auditSkip),
	}

	att := app.Group("/api/attendance", protected...)
	att.Post("/start_session", h.startSession)
	att.Post("/end_session", h.endSession)
	att.Post("/session_status", h.sessionStatus)
	att.Post("/mark_by_fingerprint", h.markByFingerprint)
	att.Post("/mark_by_face", faceLimiter(cfg.FaceRateLimit), h.markByFace)

	rep := app.Group("/api/reports", protected...)
	rep.Get("/courses/:course_id/summary", h.summary)
	rep.Get("/courses/:course_id/matrix", h.matrix)
	rep.Get("/courses/:course_id/export.csv", h.exportCSV)

	return app
}

func (h *handlers) healthz(c *fiber.Ctx) error {
	if h.svc.Health != nil {
		if err := h.svc.Health.Ready(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "error", "message": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) csrfToken(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"csrf_token": middleware.CSRFToken(c)})
}

// errorHandler renders errors that escape handlers (fiber errors, panics caught by recover).
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "message": msg})
}
