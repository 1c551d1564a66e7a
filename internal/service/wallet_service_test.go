package service

import (
	"context"
	"testing"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	walletRepo *mocks.MockWalletRepository
	encSvc     *mocks.MockEncryptionService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		walletRepo: mocks.NewMockWalletRepository(ctrl),
		encSvc:     mocks.NewMockEncryptionService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(d.walletRepo, d.encSvc, d.transactor, zerolog.Nop())
	return d
}

func TestWalletService_GetBalance_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()

	d.walletRepo.EXPECT().GetByAccountID(ctx, accountID).Return(&domain.Wallet{
		ID: uuid.New(), AccountID: accountID, Currency: "EUR", EncryptedBalance: "enc",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc").Return("12500", nil)

	balance, currency, err := d.svc.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(12500), balance)
	assert.Equal(t, "EUR", currency)
}

func TestWalletService_GetBalance_NotFound(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	d.walletRepo.EXPECT().GetByAccountID(ctx, accountID).Return(nil, nil)

	_, _, err := d.svc.GetBalance(ctx, accountID)
	assert.Equal(t, "PAY_002", appCode(t, err))
}

func TestWalletService_Topup_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	walletID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByAccountIDForUpdate(ctx, tx, accountID).Return(&domain.Wallet{
		ID: walletID, AccountID: accountID, EncryptedBalance: "enc_1000",
	}, nil)
	d.encSvc.EXPECT().Decrypt("enc_1000").Return("1000", nil)
	d.encSvc.EXPECT().Encrypt("6000").Return("enc_6000", nil)
	d.walletRepo.EXPECT().UpdateBalance(ctx, tx, walletID, "enc_6000").Return(nil)

	newBalance, err := d.svc.Topup(ctx, accountID, 5000)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), newBalance)
}

func TestWalletService_Topup_NonPositiveAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Topup(context.Background(), uuid.New(), 0)
	assert.Equal(t, "VAL_000", appCode(t, err))

	_, err = d.svc.Topup(context.Background(), uuid.New(), -100)
	assert.Equal(t, "VAL_000", appCode(t, err))
}

func TestWalletService_Topup_NoWallet(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	accountID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.walletRepo.EXPECT().GetByAccountIDForUpdate(ctx, tx, accountID).Return(nil, nil)

	_, err := d.svc.Topup(ctx, accountID, 5000)
	assert.Equal(t, "PAY_002", appCode(t, err))
}
