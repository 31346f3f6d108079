package postgres

import (
	"context"
	"fmt"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, actor_id, action, target, detail, ip, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.ActorID, log.Action, log.Target, log.Detail, log.IP, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
