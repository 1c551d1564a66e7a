package postgres

import (
	"context"
	"testing"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestListing(tokenID int64) *domain.Listing {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Listing{
		TokenID:   tokenID,
		Seller:    uuid.New(),
		Price:     5000,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func listingColumnNames() []string {
	return []string{"token_id", "seller", "price", "active", "created_at", "updated_at"}
}

func listingRow(l *domain.Listing) *pgxmock.Rows {
	return pgxmock.NewRows(listingColumnNames()).AddRow(
		l.TokenID, l.Seller, l.Price, l.Active, l.CreatedAt, l.UpdatedAt,
	)
}

func TestListingRepo_Upsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(7)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO listings").
		WithArgs(l.TokenID, l.Seller, l.Price, l.Active, l.CreatedAt, l.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Upsert(context.Background(), tx, l)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetByTokenID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(7)

	mock.ExpectQuery("SELECT .+ FROM listings WHERE token_id").
		WithArgs(int64(7)).
		WillReturnRows(listingRow(l))

	result, err := repo.GetByTokenID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, l.Seller, result.Seller)
	assert.True(t, result.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetByTokenID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM listings WHERE token_id").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(listingColumnNames()))

	result, err := repo.GetByTokenID(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_GetByTokenIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	l := newTestListing(7)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM listings WHERE token_id = \\$1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(listingRow(l))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByTokenIDForUpdate(context.Background(), tx, 7)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListingRepo_ListActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)
	a := newTestListing(1)
	b := newTestListing(2)

	rows := pgxmock.NewRows(listingColumnNames()).
		AddRow(a.TokenID, a.Seller, a.Price, a.Active, a.CreatedAt, a.UpdatedAt).
		AddRow(b.TokenID, b.Seller, b.Price, b.Active, b.CreatedAt, b.UpdatedAt)

	mock.ExpectQuery("SELECT .+ FROM listings WHERE active = TRUE").
		WillReturnRows(rows)

	listings, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Deactivating an absent slot succeeds: redemption retires listings
// whether or not one exists.
func TestListingRepo_Deactivate_MissingSlotIsNoop(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE listings SET active = FALSE").
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Deactivate(context.Background(), tx, 9)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
