package domain

import (
	"time"

	"github.com/google/uuid"
)

// WineLot is a tokenized wine allocation. The token id is allocated by the
// registry, is unique, and is never reused even across failed mints.
type WineLot struct {
	ID              int64     `json:"id"`
	Producer        uuid.UUID `json:"producer"`
	Price           int64     `json:"price"` // In smallest currency unit
	Vintage         int       `json:"vintage"`
	GrapeVariety    string    `json:"grape_variety"`
	NumberOfBottles int       `json:"number_of_bottles"`
	MaturityDate    time.Time `json:"maturity_date"`
	Redeemed        bool      `json:"redeemed"`
	Owner           uuid.UUID `json:"owner"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsMature reports whether the lot may be redeemed at the given instant.
func (w *WineLot) IsMature(now time.Time) bool {
	return !now.Before(w.MaturityDate)
}

// IsTransferable reports whether ownership may still change. Redemption is
// terminal: a redeemed lot can never be listed, sold, or transferred again.
func (w *WineLot) IsTransferable() bool {
	return !w.Redeemed
}
