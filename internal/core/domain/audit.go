package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionMint            AuditAction = "MINT"
	AuditActionList            AuditAction = "LIST"
	AuditActionBuy             AuditAction = "BUY"
	AuditActionCancel          AuditAction = "CANCEL"
	AuditActionRedeem          AuditAction = "REDEEM"
	AuditActionWhitelistAdd    AuditAction = "WHITELIST_ADD"
	AuditActionWhitelistRemove AuditAction = "WHITELIST_REMOVE"
	AuditActionSetMaturity     AuditAction = "SET_MATURITY"
	AuditActionRegister        AuditAction = "REGISTER"
	AuditActionLogin           AuditAction = "LOGIN"
	AuditActionTopup           AuditAction = "TOPUP"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	AccountID    *uuid.UUID  `json:"account_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
