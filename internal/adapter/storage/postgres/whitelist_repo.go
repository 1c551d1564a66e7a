package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// WhitelistRepo implements ports.WhitelistRepository.
type WhitelistRepo struct {
	pool Pool
}

// NewWhitelistRepo creates a new WhitelistRepo.
func NewWhitelistRepo(pool Pool) *WhitelistRepo {
	return &WhitelistRepo{pool: pool}
}

// Add inserts a whitelist entry. Adding an existing member is a no-op.
func (r *WhitelistRepo) Add(ctx context.Context, accountID, addedBy uuid.UUID) error {
	query := `INSERT INTO whitelist (account_id, added_by, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, accountID, addedBy); err != nil {
		return fmt.Errorf("whitelist add: %w", err)
	}
	return nil
}

// Remove deletes a whitelist entry. Removing an absent member is a no-op.
func (r *WhitelistRepo) Remove(ctx context.Context, accountID uuid.UUID) error {
	query := `DELETE FROM whitelist WHERE account_id = $1`

	if _, err := r.pool.Exec(ctx, query, accountID); err != nil {
		return fmt.Errorf("whitelist remove: %w", err)
	}
	return nil
}

// Contains reports whitelist membership.
func (r *WhitelistRepo) Contains(ctx context.Context, accountID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM whitelist WHERE account_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("whitelist contains: %w", err)
	}
	return exists, nil
}
