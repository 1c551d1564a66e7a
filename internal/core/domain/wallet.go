package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds an account's settlement balance with the amount encrypted
// at rest. All mint fees and purchase settlements move through wallets.
type Wallet struct {
	ID               uuid.UUID `json:"id"`
	AccountID        uuid.UUID `json:"account_id"`
	Currency         string    `json:"currency"`
	EncryptedBalance string    `json:"-"` // AES-256 encrypted, never expose raw
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
