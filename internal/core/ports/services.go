package ports

import (
	"context"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
)

// EncryptionService handles AES-256-GCM encryption/decryption of wallet balances.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification of webhook payloads.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.AccountRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// WhitelistCache is the Redis read-through cache over whitelist membership.
type WhitelistCache interface {
	// Get returns (member, found, err). found is false on cache miss.
	Get(ctx context.Context, accountID uuid.UUID) (bool, bool, error)
	Set(ctx context.Context, accountID uuid.UUID, member bool, ttl time.Duration) error
	Invalidate(ctx context.Context, accountID uuid.UUID) error
}

// --- Service Ports (Business Logic) ---

// WhitelistService maintains the set of principals permitted to trade.
// Mutations are restricted to the administrator principal fixed at
// construction and are idempotent.
type WhitelistService interface {
	AddAddress(ctx context.Context, caller, principal uuid.UUID) error
	RemoveAddress(ctx context.Context, caller, principal uuid.UUID) error
	IsWhitelisted(ctx context.Context, principal uuid.UUID) (bool, error)
}

// RegistryService owns wine lot records: minting, lookup, ownership
// transfer, and redemption marking.
type RegistryService interface {
	Mint(ctx context.Context, req MintRequest) (int64, error)
	GetWine(ctx context.Context, id int64) (*domain.WineLot, error)
	ListWines(ctx context.Context) ([]domain.WineLot, error)
	TransferOwnership(ctx context.Context, id int64, expectedCurrentOwner, newOwner uuid.UUID) error
	MarkRedeemed(ctx context.Context, id int64, expectedOwner uuid.UUID) error
	SetMaturityDate(ctx context.Context, caller uuid.UUID, id int64, maturityDate time.Time) error
}

// MintRequest holds validated input for minting a wine lot.
type MintRequest struct {
	Producer        uuid.UUID
	Price           int64
	Vintage         int
	GrapeVariety    string
	NumberOfBottles int
	MaturityDate    time.Time
	FeePaid         int64
}

// MarketplaceService is the escrow state machine: list, buy, cancel.
type MarketplaceService interface {
	List(ctx context.Context, tokenID int64, price int64, caller uuid.UUID) (*domain.Listing, error)
	Buy(ctx context.Context, tokenID int64, payment int64, caller uuid.UUID) error
	Cancel(ctx context.Context, tokenID int64, caller uuid.UUID) error
}

// RedemptionService performs the maturity-gated terminal transition.
type RedemptionService interface {
	Redeem(ctx context.Context, tokenID int64, caller uuid.UUID) error
}

// DistributorService is a stateless pass-through over Marketplace and
// RedemptionService for external distributor integrations. It surfaces
// identical error kinds and ordering as the underlying components.
type DistributorService interface {
	BuyWine(ctx context.Context, tokenID int64, payment int64, caller uuid.UUID) error
	RedeemWineNFT(ctx context.Context, tokenID int64, caller uuid.UUID) error
	ListWineForResale(ctx context.Context, tokenID int64, price int64, caller uuid.UUID) (*domain.Listing, error)
}

// WalletService exposes balance queries and top-ups.
type WalletService interface {
	GetBalance(ctx context.Context, accountID uuid.UUID) (int64, string, error) // balance, currency, error
	Topup(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) // new balance
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username    string
	Password    string
	DisplayName string
	Role        domain.AccountRole
	WebhookURL  *string
}

// RegisterResponse holds the registration result.
type RegisterResponse struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// TradeEvent describes a completed trade or redemption for webhook delivery.
type TradeEvent struct {
	EventType string // SALE_COMPLETED, LOT_REDEEMED
	TokenID   int64
	Recipient uuid.UUID // account to notify
	Price     int64
	Payment   int64
	Buyer     *uuid.UUID
}

// WebhookService defines async signed trade notifications.
type WebhookService interface {
	EnqueueTradeEvent(ctx context.Context, event TradeEvent) error
}

// AuditService records audited actions.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
