package repository

import (
	"context"
	"database/sql"

	"biometric-attendance/backend/internal/audit/domain"
	"biometric-attendance/backend/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	return r.queries.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID:         a.ID,
		ActorID:    a.ActorID,
		Action:     a.Action,
		Resource:   a.Resource,
		ResourceID: a.ResourceID,
		Ip:         a.IP,
		Metadata:   meta,
		CreatedAt:  a.CreatedAt,
	})
}
