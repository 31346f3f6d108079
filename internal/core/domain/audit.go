package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a sensitive operation for later review. ActorID is nil
// for unauthenticated actions such as failed logins.
type AuditLog struct {
	ID        uuid.UUID  `json:"id"`
	ActorID   *uuid.UUID `json:"actor_id,omitempty"`
	Action    string     `json:"action"`
	Target    string     `json:"target,omitempty"`
	Detail    string     `json:"detail,omitempty"`
	IP        string     `json:"ip,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewAuditLog creates an audit entry stamped with the current time.
func NewAuditLog(actorID *uuid.UUID, action, target, detail, ip string) *AuditLog {
	return &AuditLog{
		ID:        uuid.New(),
		ActorID:   actorID,
		Action:    action,
		Target:    target,
		Detail:    detail,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}
}
