package middleware

import (
	"encoding/json"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
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

		action, resourceType := mapPathToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var accountID *uuid.UUID
		if aid, exists := c.Get(CtxAccountID); exists {
			if id, ok := aid.(uuid.UUID); ok {
				accountID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			AccountID:    accountID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "account"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/wines" && method == "POST":
		return domain.AuditActionMint, "wine"
	case path == "/api/v1/wines/:id/maturity" && method == "PUT":
		return domain.AuditActionSetMaturity, "wine"
	case path == "/api/v1/wines/:id/redeem" && method == "POST":
		return domain.AuditActionRedeem, "wine"
	case path == "/api/v1/listings" && method == "POST":
		return domain.AuditActionList, "listing"
	case path == "/api/v1/listings/:id/buy" && method == "POST":
		return domain.AuditActionBuy, "listing"
	case path == "/api/v1/listings/:id" && method == "DELETE":
		return domain.AuditActionCancel, "listing"
	case path == "/api/v1/whitelist" && method == "POST":
		return domain.AuditActionWhitelistAdd, "whitelist"
	case path == "/api/v1/whitelist/:id" && method == "DELETE":
		return domain.AuditActionWhitelistRemove, "whitelist"
	case path == "/api/v1/wallets/topup" && method == "POST":
		return domain.AuditActionTopup, "wallet"
	case path == "/api/v1/distributor/purchases" && method == "POST":
		return domain.AuditActionBuy, "listing"
	case path == "/api/v1/distributor/redemptions" && method == "POST":
		return domain.AuditActionRedeem, "wine"
	case path == "/api/v1/distributor/resales" && method == "POST":
		return domain.AuditActionList, "listing"
	}
	return "", ""
}
