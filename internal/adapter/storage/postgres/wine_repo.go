package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WineRepo implements ports.WineRepository. Token ids come from the
// wines table BIGSERIAL sequence: a rolled-back mint still consumes its
// id, so ids are never reused.
type WineRepo struct {
	pool Pool
}

// NewWineRepo creates a new WineRepo.
func NewWineRepo(pool Pool) *WineRepo {
	return &WineRepo{pool: pool}
}

const wineColumns = `id, producer, price, vintage, grape_variety, number_of_bottles, maturity_date, redeemed, owner, created_at, updated_at`

// Create inserts a new wine lot and assigns its token id from the
// sequence. The lot's ID field is populated on return.
func (r *WineRepo) Create(ctx context.Context, tx pgx.Tx, lot *domain.WineLot) error {
	query := `INSERT INTO wines (producer, price, vintage, grape_variety, number_of_bottles, maturity_date, redeemed, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := tx.QueryRow(ctx, query,
		lot.Producer, lot.Price, lot.Vintage, lot.GrapeVariety,
		lot.NumberOfBottles, lot.MaturityDate, lot.Redeemed, lot.Owner,
		lot.CreatedAt, lot.UpdatedAt,
	).Scan(&lot.ID)
	if err != nil {
		return fmt.Errorf("insert wine lot: %w", err)
	}
	return nil
}

// GetByID fetches a wine lot by token id (non-locking read).
func (r *WineRepo) GetByID(ctx context.Context, id int64) (*domain.WineLot, error) {
	query := `SELECT ` + wineColumns + ` FROM wines WHERE id = $1`
	return scanWine(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a wine lot with pessimistic locking.
// This MUST be called within a transaction.
func (r *WineRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.WineLot, error) {
	query := `SELECT ` + wineColumns + ` FROM wines WHERE id = $1 FOR UPDATE`
	return scanWine(tx.QueryRow(ctx, query, id))
}

// ListActive returns all non-redeemed wine lots ordered by token id.
func (r *WineRepo) ListActive(ctx context.Context) ([]domain.WineLot, error) {
	query := `SELECT ` + wineColumns + ` FROM wines WHERE redeemed = FALSE ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wine lots: %w", err)
	}
	defer rows.Close()

	var lots []domain.WineLot
	for rows.Next() {
		var lot domain.WineLot
		if err := rows.Scan(
			&lot.ID, &lot.Producer, &lot.Price, &lot.Vintage, &lot.GrapeVariety,
			&lot.NumberOfBottles, &lot.MaturityDate, &lot.Redeemed, &lot.Owner,
			&lot.CreatedAt, &lot.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan wine lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wine lots: %w", err)
	}
	return lots, nil
}

// UpdateOwner transfers ownership within a transaction.
func (r *WineRepo) UpdateOwner(ctx context.Context, tx pgx.Tx, id int64, newOwner uuid.UUID) error {
	query := `UPDATE wines SET owner = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, newOwner, id)
	if err != nil {
		return fmt.Errorf("update wine owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wine lot not found: %d", id)
	}
	return nil
}

// MarkRedeemed irreversibly flags the lot as redeemed.
func (r *WineRepo) MarkRedeemed(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `UPDATE wines SET redeemed = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark wine redeemed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wine lot not found: %d", id)
	}
	return nil
}

// SetMaturityDate overrides the lot's maturity date.
func (r *WineRepo) SetMaturityDate(ctx context.Context, id int64, maturityDate time.Time) error {
	query := `UPDATE wines SET maturity_date = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, maturityDate, id)
	if err != nil {
		return fmt.Errorf("set maturity date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wine lot not found: %d", id)
	}
	return nil
}

func scanWine(row pgx.Row) (*domain.WineLot, error) {
	lot := &domain.WineLot{}
	err := row.Scan(
		&lot.ID, &lot.Producer, &lot.Price, &lot.Vintage, &lot.GrapeVariety,
		&lot.NumberOfBottles, &lot.MaturityDate, &lot.Redeemed, &lot.Owner,
		&lot.CreatedAt, &lot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wine lot: %w", err)
	}
	return lot, nil
}
