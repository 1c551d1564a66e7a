package dto

import (
	"time"

	"wine-lot-exchange/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username    string  `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password    string  `json:"password" binding:"required,min=8,max=128"`
	DisplayName string  `json:"display_name" binding:"required,min=1,max=100"`
	Role        string  `json:"role" binding:"required,oneof=PRODUCER TRADER"`
	WebhookURL  *string `json:"webhook_url,omitempty" binding:"omitempty,safe_url"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// MintRequest is the request body for minting a wine lot.
type MintRequest struct {
	Price           int64  `json:"price" binding:"required,gt=0"`
	Vintage         int    `json:"vintage" binding:"required,gte=1900,lte=2100"`
	GrapeVariety    string `json:"grape_variety" binding:"required,min=1,max=100"`
	NumberOfBottles int    `json:"number_of_bottles" binding:"required,gt=0"`
	MaturityDate    string `json:"maturity_date" binding:"required"` // RFC 3339
	FeePaid         int64  `json:"fee_paid" binding:"required,gt=0"`
}

// MintResponse returns the assigned token id.
type MintResponse struct {
	TokenID int64 `json:"token_id"`
}

// WineResponse is the public view of a wine lot.
type WineResponse struct {
	TokenID         int64  `json:"token_id"`
	Producer        string `json:"producer"`
	Price           int64  `json:"price"`
	Vintage         int    `json:"vintage"`
	GrapeVariety    string `json:"grape_variety"`
	NumberOfBottles int    `json:"number_of_bottles"`
	MaturityDate    string `json:"maturity_date"`
	Owner           string `json:"owner"`
}

// NewWineResponse maps a domain lot to its public view.
func NewWineResponse(lot *domain.WineLot) WineResponse {
	return WineResponse{
		TokenID:         lot.ID,
		Producer:        lot.Producer.String(),
		Price:           lot.Price,
		Vintage:         lot.Vintage,
		GrapeVariety:    lot.GrapeVariety,
		NumberOfBottles: lot.NumberOfBottles,
		MaturityDate:    lot.MaturityDate.UTC().Format(time.RFC3339),
		Owner:           lot.Owner.String(),
	}
}

// SetMaturityRequest is the admin request to override a maturity date.
type SetMaturityRequest struct {
	MaturityDate string `json:"maturity_date" binding:"required"` // RFC 3339
}

// ListRequest is the request body for listing a wine lot for sale.
type ListRequest struct {
	TokenID int64 `json:"token_id" binding:"required,gt=0"`
	Price   int64 `json:"price" binding:"required,gt=0"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	TokenID int64  `json:"token_id"`
	Seller  string `json:"seller"`
	Price   int64  `json:"price"`
	Active  bool   `json:"active"`
}

// NewListingResponse maps a domain listing to its public view.
func NewListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		TokenID: l.TokenID,
		Seller:  l.Seller.String(),
		Price:   l.Price,
		Active:  l.Active,
	}
}

// BuyRequest is the request body for buying a listed lot.
type BuyRequest struct {
	Payment int64 `json:"payment" binding:"required,gt=0"`
}

// DistributorPurchaseRequest is the distributor facade purchase body.
type DistributorPurchaseRequest struct {
	TokenID int64 `json:"token_id" binding:"required,gt=0"`
	Payment int64 `json:"payment" binding:"required,gt=0"`
}

// DistributorRedemptionRequest is the distributor facade redemption body.
type DistributorRedemptionRequest struct {
	TokenID int64 `json:"token_id" binding:"required,gt=0"`
}

// DistributorResaleRequest is the distributor facade resale body.
type DistributorResaleRequest struct {
	TokenID int64 `json:"token_id" binding:"required,gt=0"`
	Price   int64 `json:"price" binding:"required,gt=0"`
}

// WhitelistRequest is the admin request to whitelist a principal.
type WhitelistRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// TopupRequest is the request body for wallet topup.
type TopupRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// WalletBalanceResponse is the response for balance query.
type WalletBalanceResponse struct {
	Balance  int64  `json:"balance"`
	Currency string `json:"currency"`
}
