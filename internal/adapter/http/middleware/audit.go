package middleware

import (
	"encoding/json"

	"emoney-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records successful write
// operations. It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, target := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var actorID *uuid.UUID
		if id, ok := UserID(c); ok {
			actorID = &id
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Record(c.Request.Context(), actorID, action, target, string(detail), c.ClientIP())
	}
}

func mapPathToAction(path, method string) (string, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return "register", "user"
	case path == "/api/v1/wallets/deposit" && method == "POST":
		return "deposit", "wallet"
	case path == "/api/v1/wallets/transfer" && method == "POST":
		return "transfer", "wallet"
	case path == "/api/v1/merchant/charge" && method == "POST":
		return "charge", "wallet"
	case path == "/api/v1/merchant/refund" && method == "POST":
		return "refund", "wallet"
	case path == "/api/v1/merchant/refund/by-transaction" && method == "POST":
		return "refund_by_transaction", "wallet"
	}
	return "", ""
}
