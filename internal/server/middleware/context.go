package middleware

import "context"

type contextKey struct{ name string }

var (
	lecturerIDKey   = contextKey{"lecturer_id"}
	departmentIDKey = contextKey{"department_id"}
	clientIPKey     = contextKey{"client_ip"}
)

// WithLecturer returns a context carrying the authenticated lecturer.
// Handlers and services read it via GetLecturerID and GetDepartmentID.
func WithLecturer(ctx context.Context, lecturerID, departmentID string) context.Context {
	ctx = context.WithValue(ctx, lecturerIDKey, lecturerID)
	ctx = context.WithValue(ctx, departmentIDKey, departmentID)
	return ctx
}

// GetLecturerID returns the lecturer_id from context and true if set; otherwise "", false.
func GetLecturerID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(lecturerIDKey).(string)
	return v, ok && v != ""
}

// GetDepartmentID returns the department_id from context and true if set; otherwise "", false.
func GetDepartmentID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(departmentIDKey).(string)
	return v, ok && v != ""
}

// WithClientIP returns a context carrying the request's client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP stored by RequestContext, or "unknown". It satisfies audit.IPExtractor.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}
