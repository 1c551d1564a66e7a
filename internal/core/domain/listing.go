package domain

import (
	"time"

	"github.com/google/uuid"
)

// Listing is an active offer by the current owner to sell a wine lot at a
// fixed price. There is at most one listing slot per token id; relisting
// overwrites the prior entry.
type Listing struct {
	TokenID   int64     `json:"token_id"`
	Seller    uuid.UUID `json:"seller"`
	Price     int64     `json:"price"` // In smallest currency unit
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
