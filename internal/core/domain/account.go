package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole classifies a principal's position in the exchange.
type AccountRole string

const (
	RoleAdmin    AccountRole = "ADMIN"
	RoleProducer AccountRole = "PRODUCER"
	RoleTrader   AccountRole = "TRADER"
)

// AccountStatus represents the state of an account.
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "ACTIVE"
	AccountStatusDeactivated AccountStatus = "DEACTIVATED"
)

// Account is an authenticated principal: producer, trader, or the
// whitelist administrator.
type Account struct {
	ID           uuid.UUID     `json:"id"`
	Username     string        `json:"username"`
	PasswordHash string        `json:"-"` // Never expose
	DisplayName  string        `json:"display_name"`
	Role         AccountRole   `json:"role"`
	WebhookURL   *string       `json:"webhook_url,omitempty"`
	Status       AccountStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// IsActive returns true if the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
