package service

import (
	"context"
	"fmt"
	"strconv"

	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	encSvc     ports.EncryptionService
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		encSvc:     encSvc,
		transactor: transactor,
		log:        log,
	}
}

// GetBalance returns the decrypted balance and currency for an account.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (int64, string, error) {
	wallet, err := s.walletRepo.GetByAccountID(ctx, accountID)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return 0, "", apperror.ErrWalletNotFound()
	}

	balanceStr, err := s.encSvc.Decrypt(wallet.EncryptedBalance)
	if err != nil {
		return 0, "", apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}
	balance, err := strconv.ParseInt(balanceStr, 10, 64)
	if err != nil {
		return 0, "", apperror.InternalError(fmt.Errorf("parse balance: %w", err))
	}
	return balance, wallet.Currency, nil
}

// Topup credits an account's wallet and returns the new balance. The
// read-modify-write happens under a row lock so concurrent top-ups and
// settlements never lose updates.
func (s *WalletServiceImpl) Topup(ctx context.Context, accountID uuid.UUID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperror.Validation("amount must be positive")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrWalletNotFound()
	}

	balanceStr, err := s.encSvc.Decrypt(wallet.EncryptedBalance)
	if err != nil {
		return 0, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}
	balance, err := strconv.ParseInt(balanceStr, 10, 64)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("parse balance: %w", err))
	}

	newBalance := balance + amount
	encrypted, err := s.encSvc.Encrypt(strconv.FormatInt(newBalance, 10))
	if err != nil {
		return 0, apperror.ErrEncryptionFailure(fmt.Errorf("encrypt balance: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, encrypted); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Msg("wallet topped up")
	return newBalance, nil
}
