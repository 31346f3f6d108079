package service

import (
	"context"

	"emoney-wallet/internal/core/domain"
	"emoney-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new audit service.
// If repo is nil, audit entries are only written to the logger.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists an audit entry asynchronously (fire-and-forget). The
// request context may be cancelled before the write lands, so persistence
// uses a fresh context.
func (s *auditService) Record(ctx context.Context, actorID *uuid.UUID, action, target, detail, ip string) {
	entry := domain.NewAuditLog(actorID, action, target, detail, ip)

	go func() {
		ev := s.log.Info().
			Str("action", action).
			Str("target", target).
			Str("ip", ip)
		if actorID != nil {
			ev = ev.Str("actor_id", actorID.String())
		}
		ev.Msg("audit")

		if s.repo != nil {
			if err := s.repo.Create(context.Background(), entry); err != nil {
				s.log.Warn().Err(err).Str("action", action).Msg("failed to persist audit log")
			}
		}
	}()
}
