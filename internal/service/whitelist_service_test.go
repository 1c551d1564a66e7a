package service

import (
	"context"
	"errors"
	"testing"

	"wine-lot-exchange/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type whitelistTestDeps struct {
	svc   *WhitelistServiceImpl
	repo  *mocks.MockWhitelistRepository
	cache *mocks.MockWhitelistCache
	admin uuid.UUID
	ctrl  *gomock.Controller
}

func setupWhitelistService(t *testing.T) *whitelistTestDeps {
	ctrl := gomock.NewController(t)
	d := &whitelistTestDeps{
		repo:  mocks.NewMockWhitelistRepository(ctrl),
		cache: mocks.NewMockWhitelistCache(ctrl),
		admin: uuid.New(),
		ctrl:  ctrl,
	}
	d.svc = NewWhitelistService(d.repo, d.cache, d.admin, zerolog.Nop())
	return d
}

func TestWhitelistService_AddAddress_Success(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.repo.EXPECT().Add(ctx, principal, d.admin).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, principal).Return(nil)

	err := d.svc.AddAddress(ctx, d.admin, principal)
	require.NoError(t, err)
}

func TestWhitelistService_AddAddress_NonAdmin(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	err := d.svc.AddAddress(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, "ACL_003", appCode(t, err))
}

// Adding an existing member is a no-op success, the repository upsert
// absorbs the duplicate.
func TestWhitelistService_AddAddress_Idempotent(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.repo.EXPECT().Add(ctx, principal, d.admin).Return(nil).Times(2)
	d.cache.EXPECT().Invalidate(ctx, principal).Return(nil).Times(2)

	require.NoError(t, d.svc.AddAddress(ctx, d.admin, principal))
	require.NoError(t, d.svc.AddAddress(ctx, d.admin, principal))
}

func TestWhitelistService_RemoveAddress_Success(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.repo.EXPECT().Remove(ctx, principal).Return(nil)
	d.cache.EXPECT().Invalidate(ctx, principal).Return(nil)

	err := d.svc.RemoveAddress(ctx, d.admin, principal)
	require.NoError(t, err)
}

func TestWhitelistService_RemoveAddress_NonAdmin(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	err := d.svc.RemoveAddress(context.Background(), uuid.New(), uuid.New())
	assert.Equal(t, "ACL_003", appCode(t, err))
}

func TestWhitelistService_IsWhitelisted_CacheHit(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.cache.EXPECT().Get(ctx, principal).Return(true, true, nil)

	member, err := d.svc.IsWhitelisted(ctx, principal)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestWhitelistService_IsWhitelisted_CacheMissPopulates(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.cache.EXPECT().Get(ctx, principal).Return(false, false, nil)
	d.repo.EXPECT().Contains(ctx, principal).Return(true, nil)
	d.cache.EXPECT().Set(ctx, principal, true, whitelistCacheTTL).Return(nil)

	member, err := d.svc.IsWhitelisted(ctx, principal)
	require.NoError(t, err)
	assert.True(t, member)
}

// A cache failure degrades to a database read instead of failing the call.
func TestWhitelistService_IsWhitelisted_CacheFailureFallsThrough(t *testing.T) {
	d := setupWhitelistService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	principal := uuid.New()

	d.cache.EXPECT().Get(ctx, principal).Return(false, false, errors.New("redis down"))
	d.repo.EXPECT().Contains(ctx, principal).Return(false, nil)
	d.cache.EXPECT().Set(ctx, principal, false, whitelistCacheTTL).Return(errors.New("redis down"))

	member, err := d.svc.IsWhitelisted(ctx, principal)
	require.NoError(t, err)
	assert.False(t, member)
}
