package service

import (
	"context"
	"testing"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc         *AuthServiceImpl
	accountRepo *mocks.MockAccountRepository
	walletRepo  *mocks.MockWalletRepository
	hashSvc     *mocks.MockHashService
	encSvc      *mocks.MockEncryptionService
	tokenSvc    *mocks.MockTokenService
	ctrl        *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		accountRepo: mocks.NewMockAccountRepository(ctrl),
		walletRepo:  mocks.NewMockWalletRepository(ctrl),
		hashSvc:     mocks.NewMockHashService(ctrl),
		encSvc:      mocks.NewMockEncryptionService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewAuthService(d.accountRepo, d.walletRepo, d.hashSvc, d.encSvc, d.tokenSvc)
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.accountRepo.EXPECT().GetByUsername(ctx, "chateau_nord").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("argon2hash", nil)
	d.accountRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, a *domain.Account) error {
			assert.Equal(t, "chateau_nord", a.Username)
			assert.Equal(t, "argon2hash", a.PasswordHash)
			assert.Equal(t, domain.RoleProducer, a.Role)
			assert.Equal(t, domain.AccountStatusActive, a.Status)
			return nil
		})
	d.encSvc.EXPECT().Encrypt("0").Return("enc_zero", nil)
	d.walletRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, w *domain.Wallet) error {
			assert.Equal(t, "enc_zero", w.EncryptedBalance)
			assert.Equal(t, "EUR", w.Currency)
			return nil
		})

	resp, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username:    "chateau_nord",
		Password:    "s3cret",
		DisplayName: "Château Nord",
		Role:        domain.RoleProducer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProducer, resp.Role)
	assert.NotEqual(t, uuid.Nil, resp.AccountID)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "taken").Return(&domain.Account{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "taken", Password: "pw", Role: domain.RoleTrader,
	})
	assert.Equal(t, "AUTH_002", appCode(t, err))
}

func TestAuthService_Register_AdminRoleRejected(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), ports.RegisterRequest{
		Username: "boss", Password: "pw", Role: domain.RoleAdmin,
	})
	assert.Equal(t, "VAL_000", appCode(t, err))
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	expiry := time.Now().Add(time.Hour)

	d.accountRepo.EXPECT().GetByUsername(ctx, "trader1").Return(&domain.Account{
		ID: accountID, Username: "trader1", PasswordHash: "hash",
		Role: domain.RoleTrader, Status: domain.AccountStatusActive,
	}, nil)
	d.hashSvc.EXPECT().Verify("pw", "hash").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(accountID, domain.RoleTrader).Return("jwt-token", expiry, nil)

	token, exp, err := d.svc.Login(ctx, "trader1", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
	assert.Equal(t, expiry, exp)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "trader1").Return(&domain.Account{
		ID: uuid.New(), PasswordHash: "hash", Status: domain.AccountStatusActive,
	}, nil)
	d.hashSvc.EXPECT().Verify("wrong", "hash").Return(false, nil)

	_, _, err := d.svc.Login(ctx, "trader1", "wrong")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, _, err := d.svc.Login(ctx, "ghost", "pw")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.accountRepo.EXPECT().GetByUsername(ctx, "old").Return(&domain.Account{
		ID: uuid.New(), PasswordHash: "hash", Status: domain.AccountStatusDeactivated,
	}, nil)
	d.hashSvc.EXPECT().Verify("pw", "hash").Return(true, nil)

	_, _, err := d.svc.Login(ctx, "old", "pw")
	assert.Equal(t, "AUTH_001", appCode(t, err))
}
