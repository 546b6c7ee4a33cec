package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides where the last path segment is not a good action name.
var routeOverrides = map[string]ActionResource{
	"GET /api/reports/courses/:course_id/summary":    {Action: "view_summary", Resource: "attendance_report"},
	"GET /api/reports/courses/:course_id/matrix":     {Action: "view_matrix", Resource: "attendance_report"},
	"GET /api/reports/courses/:course_id/export.csv": {Action: "export_csv", Resource: "attendance_report"},
}

// ParseRoute returns action and resource for a method and a registered route pattern
// (e.g. POST /api/attendance/mark_by_face).
// Under /api/attendance the action is the last segment; marks act on attendance_record and everything
// else on attendance_session. Other routes yield the lowercase method and the segment after /api.
func ParseRoute(method, route string) ActionResource {
	method = strings.ToUpper(method)
	if ar, ok := routeOverrides[method+" "+route]; ok {
		return ar
	}
	route = strings.TrimSuffix(route, "/")
	parts := strings.Split(strings.TrimPrefix(route, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	if parts[1] == "attendance" && len(parts) == 3 {
		action := parts[2]
		resource := "attendance_session"
		if strings.HasPrefix(action, "mark_") {
			resource = "attendance_record"
		}
		return ActionResource{Action: action, Resource: resource}
	}
	return ActionResource{Action: strings.ToLower(method), Resource: parts[1]}
}
