package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"

	"biometric-attendance/backend/internal/security"
)

func TestExtractBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"scheme only", "Bearer", ""},
		{"basic", "Basic abc", ""},
		{"bearer", "Bearer abc.def", "abc.def"},
		{"lowercase", "bearer abc", "abc"},
		{"mixed case and spaces", "  BeArEr   tok  ", "tok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractBearer(tt.header); got != tt.want {
				t.Errorf("extractBearer(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestClientIP_Default(t *testing.T) {
	if got := ClientIP(context.Background()); got != "unknown" {
		t.Errorf("ClientIP = %q, want unknown", got)
	}
	ctx := WithClientIP(context.Background(), "10.0.0.1")
	if got := ClientIP(ctx); got != "10.0.0.1" {
		t.Errorf("ClientIP = %q, want 10.0.0.1", got)
	}
}

func TestWithLecturer(t *testing.T) {
	ctx := WithLecturer(context.Background(), "lec-1", "dep-1")
	if id, ok := GetLecturerID(ctx); !ok || id != "lec-1" {
		t.Errorf("GetLecturerID = %q, %v", id, ok)
	}
	if id, ok := GetDepartmentID(ctx); !ok || id != "dep-1" {
		t.Errorf("GetDepartmentID = %q, %v", id, ok)
	}
	if _, ok := GetLecturerID(context.Background()); ok {
		t.Error("GetLecturerID on empty context should be false")
	}
}

func bearerApp(t *testing.T) (*fiber.App, *security.TokenProvider) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	app := fiber.New()
	app.Use(Bearer(tokens))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, _ := GetLecturerID(c.UserContext())
		return c.SendString(LecturerID(c) + "|" + id)
	})
	return app, tokens
}

func TestBearer_RejectsMissingAndInvalid(t *testing.T) {
	app, _ := bearerApp(t)
	for _, header := range []string{"", "Bearer", "Bearer not-a-jwt", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, resp.StatusCode)
		}
	}
}

func TestBearer_SetsLecturer(t *testing.T) {
	app, tokens := bearerApp(t)
	token, _, err := tokens.IssueAccess("lec-1", "dep-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := readBody(t, resp)
	if body != "lec-1|lec-1" {
		t.Errorf("body = %q, want lec-1|lec-1", body)
	}
}

func TestCSRF_DoubleSubmit(t *testing.T) {
	app := fiber.New()
	app.Use(CSRF(false))
	app.Get("/token", func(c *fiber.Ctx) error { return c.SendString(CSRFToken(c)) })
	app.Post("/action", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/token", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	token := readBody(t, resp)
	if token == "" {
		t.Fatal("expected a csrf token")
	}
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == CSRFCookieName {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("csrf cookie not set")
	}

	// No header.
	req := httptest.NewRequest(http.MethodPost, "/action", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("missing header: status = %d, want 403", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "invalid csrf token") {
		t.Errorf("body = %q", body)
	}

	// Wrong header.
	req = httptest.NewRequest(http.MethodPost, "/action", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, "wrong")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("wrong header: status = %d, want 403", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodPost, "/action", nil)
	req.AddCookie(cookie)
	req.Header.Set(CSRFHeader, token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("valid token: status = %d, want 200", resp.StatusCode)
	}
}

type auditEntry struct {
	actorID, action, resource, resourceID, metadata string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (f *fakeAudit) LogEvent(ctx context.Context, actorID, action, resource, resourceID, metadata string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, auditEntry{actorID, action, resource, resourceID, metadata})
}

func TestAudit(t *testing.T) {
	logger := &fakeAudit{}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if id := c.Get("X-Test-Lecturer"); id != "" {
			c.Locals(LocalLecturerID, id)
		}
		return c.Next()
	})
	app.Use(Audit(logger, map[string]bool{"POST /api/attendance/session_status": true}))
	app.Post("/api/attendance/mark_by_face", func(c *fiber.Ctx) error {
		c.Locals(LocalAuditResourceID, "ses-1")
		return c.SendString("ok")
	})
	app.Post("/api/attendance/session_status", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/reports/courses/:course_id/summary", func(c *fiber.Ctx) error {
		c.Locals(LocalAuditResourceID, c.Params("course_id"))
		return fiber.NewError(fiber.StatusForbidden, "no")
	})

	send := func(method, path, lecturer string) {
		req := httptest.NewRequest(method, path, nil)
		if lecturer != "" {
			req.Header.Set("X-Test-Lecturer", lecturer)
		}
		if _, err := app.Test(req); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}
	send(http.MethodPost, "/api/attendance/mark_by_face", "lec-1")
	send(http.MethodPost, "/api/attendance/mark_by_face", "")
	send(http.MethodPost, "/api/attendance/session_status", "lec-1")
	send(http.MethodGet, "/api/reports/courses/c-9/summary", "lec-2")

	if len(logger.entries) != 2 {
		t.Fatalf("entries = %d, want 2: %+v", len(logger.entries), logger.entries)
	}
	e := logger.entries[0]
	if e.actorID != "lec-1" || e.action != "mark_by_face" || e.resource != "attendance_record" || e.resourceID != "ses-1" {
		t.Errorf("entry[0] = %+v", e)
	}
	if !strings.Contains(e.metadata, `"status":200`) {
		t.Errorf("entry[0] metadata = %q", e.metadata)
	}
	e = logger.entries[1]
	if e.action != "view_summary" || e.resourceID != "c-9" || !strings.Contains(e.metadata, `"status":403`) {
		t.Errorf("entry[1] = %+v", e)
	}
}

func TestAudit_EntriesSurviveLaterRequests(t *testing.T) {
	logger := &fakeAudit{}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(LocalLecturerID, c.Get("X-Test-Lecturer"))
		return c.Next()
	})
	app.Use(Audit(logger, nil))
	app.Get("/api/reports/courses/:course_id/summary", func(c *fiber.Ctx) error {
		c.Locals(LocalAuditResourceID, c.Params("course_id"))
		return c.SendString("ok")
	})

	want := []auditEntry{
		{actorID: "lec-1", resourceID: "c-1"},
		{actorID: "lec-2", resourceID: "c-22"},
		{actorID: "lec-3", resourceID: "c-333"},
	}
	for _, w := range want {
		req := httptest.NewRequest(http.MethodGet, "/api/reports/courses/"+w.resourceID+"/summary", nil)
		req.Header.Set("X-Test-Lecturer", w.actorID)
		if _, err := app.Test(req); err != nil {
			t.Fatalf("app.Test: %v", err)
		}
	}

	if len(logger.entries) != len(want) {
		t.Fatalf("entries = %d, want %d", len(logger.entries), len(want))
	}
	for i, w := range want {
		got := logger.entries[i]
		if got.actorID != w.actorID || got.resourceID != w.resourceID {
			t.Errorf("entry[%d] = %s/%s, want %s/%s", i, got.actorID, got.resourceID, w.actorID, w.resourceID)
		}
	}
}

func TestTracing_PassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/fail", func(c *fiber.Ctx) error { return errors.New("boom") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("ok: resp=%v err=%v", resp, err)
	}
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("fail: status = %d, want 500", resp.StatusCode)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}
