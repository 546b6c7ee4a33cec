package domain

import "time"

// AuditLog records one lecturer action against a session, record or report.
type AuditLog struct {
	ID         string
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	IP         string
	Metadata   string
	CreatedAt  time.Time
}
