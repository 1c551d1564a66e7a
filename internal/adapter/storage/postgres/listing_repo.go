package postgres

import (
	"context"
	"errors"
	"fmt"

	"wine-lot-exchange/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ListingRepo implements ports.ListingRepository. The listings table is
// keyed by token_id: one slot per token, relisting overwrites.
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `token_id, seller, price, active, created_at, updated_at`

// Upsert creates or overwrites the listing slot for a token.
func (r *ListingRepo) Upsert(ctx context.Context, tx pgx.Tx, l *domain.Listing) error {
	query := `INSERT INTO listings (token_id, seller, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (token_id) DO UPDATE SET
			seller = EXCLUDED.seller,
			price = EXCLUDED.price,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`

	_, err := tx.Exec(ctx, query,
		l.TokenID, l.Seller, l.Price, l.Active, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert listing: %w", err)
	}
	return nil
}

// GetByTokenID fetches the listing slot for a token (non-locking read).
func (r *ListingRepo) GetByTokenID(ctx context.Context, tokenID int64) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE token_id = $1`
	return scanListing(r.pool.QueryRow(ctx, query, tokenID))
}

// GetByTokenIDForUpdate fetches the listing slot with pessimistic
// locking. This MUST be called within a transaction.
func (r *ListingRepo) GetByTokenIDForUpdate(ctx context.Context, tx pgx.Tx, tokenID int64) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE token_id = $1 FOR UPDATE`
	return scanListing(tx.QueryRow(ctx, query, tokenID))
}

// ListActive returns all active listings ordered by token id.
func (r *ListingRepo) ListActive(ctx context.Context) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE active = TRUE ORDER BY token_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.TokenID, &l.Seller, &l.Price, &l.Active, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

// Deactivate retires the listing slot for a token. A missing slot is
// not an error: redemption retires listings unconditionally.
func (r *ListingRepo) Deactivate(ctx context.Context, tx pgx.Tx, tokenID int64) error {
	query := `UPDATE listings SET active = FALSE, updated_at = NOW() WHERE token_id = $1`

	if _, err := tx.Exec(ctx, query, tokenID); err != nil {
		return fmt.Errorf("deactivate listing: %w", err)
	}
	return nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(&l.TokenID, &l.Seller, &l.Price, &l.Active, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return l, nil
}
