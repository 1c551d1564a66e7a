package ports

import (
	"context"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error)
	GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error
}

// WineRepository defines persistence operations for wine lots. Token ids
// come from a database sequence and are never reused, even when the
// surrounding transaction rolls back.
type WineRepository interface {
	Create(ctx context.Context, tx pgx.Tx, lot *domain.WineLot) error
	GetByID(ctx context.Context, id int64) (*domain.WineLot, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.WineLot, error)
	ListActive(ctx context.Context) ([]domain.WineLot, error)
	UpdateOwner(ctx context.Context, tx pgx.Tx, id int64, newOwner uuid.UUID) error
	MarkRedeemed(ctx context.Context, tx pgx.Tx, id int64) error
	SetMaturityDate(ctx context.Context, id int64, maturityDate time.Time) error
}

// ListingRepository defines persistence for the single listing slot per
// token id. Upsert overwrites any prior listing for the same token.
type ListingRepository interface {
	Upsert(ctx context.Context, tx pgx.Tx, listing *domain.Listing) error
	GetByTokenID(ctx context.Context, tokenID int64) (*domain.Listing, error)
	GetByTokenIDForUpdate(ctx context.Context, tx pgx.Tx, tokenID int64) (*domain.Listing, error)
	ListActive(ctx context.Context) ([]domain.Listing, error)
	Deactivate(ctx context.Context, tx pgx.Tx, tokenID int64) error
}

// WhitelistRepository persists the trading whitelist membership set.
type WhitelistRepository interface {
	Add(ctx context.Context, accountID, addedBy uuid.UUID) error
	Remove(ctx context.Context, accountID uuid.UUID) error
	Contains(ctx context.Context, accountID uuid.UUID) (bool, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
