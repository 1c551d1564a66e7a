package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegistryServiceImpl implements ports.RegistryService. It owns wine lot
// records: ids are allocated by the database sequence and never reused,
// even when the surrounding transaction rolls back.
type RegistryServiceImpl struct {
	wineRepo   ports.WineRepository
	walletRepo ports.WalletRepository
	encSvc     ports.EncryptionService
	transactor ports.DBTransactor
	minMintFee int64
	admin      uuid.UUID
	log        zerolog.Logger
}

// NewRegistryService creates a new RegistryServiceImpl. admin is the
// privileged principal allowed to override maturity dates.
func NewRegistryService(
	wineRepo ports.WineRepository,
	walletRepo ports.WalletRepository,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	minMintFee int64,
	admin uuid.UUID,
	log zerolog.Logger,
) *RegistryServiceImpl {
	return &RegistryServiceImpl{
		wineRepo:   wineRepo,
		walletRepo: walletRepo,
		encSvc:     encSvc,
		transactor: transactor,
		minMintFee: minMintFee,
		admin:      admin,
		log:        log,
	}
}

// Mint creates a new wine lot owned by the producer. The mint fee is
// debited from the producer's wallet in the same transaction that
// persists the lot.
func (s *RegistryServiceImpl) Mint(ctx context.Context, req ports.MintRequest) (int64, error) {
	if req.FeePaid < s.minMintFee {
		return 0, apperror.ErrInsufficientMintFee()
	}
	if req.Price <= 0 {
		return 0, apperror.ErrInvalidPrice()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & debit the producer's wallet for the mint fee
	wallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, dbTx, req.Producer)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return 0, apperror.ErrWalletNotFound()
	}

	balance, err := s.decryptBalance(wallet.EncryptedBalance)
	if err != nil {
		return 0, err
	}
	if balance < req.FeePaid {
		return 0, apperror.ErrInsufficientFunds()
	}

	newBalanceEnc, err := s.encryptBalance(balance - req.FeePaid)
	if err != nil {
		return 0, err
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalanceEnc); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("debit mint fee: %w", err))
	}

	now := time.Now().UTC()
	lot := &domain.WineLot{
		Producer:        req.Producer,
		Price:           req.Price,
		Vintage:         req.Vintage,
		GrapeVariety:    req.GrapeVariety,
		NumberOfBottles: req.NumberOfBottles,
		MaturityDate:    req.MaturityDate,
		Redeemed:        false,
		Owner:           req.Producer,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.wineRepo.Create(ctx, dbTx, lot); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("create wine lot: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("token_id", lot.ID).
		Str("producer", req.Producer.String()).
		Int64("price", req.Price).
		Int64("fee_paid", req.FeePaid).
		Msg("wine lot minted")

	return lot.ID, nil
}

// GetWine returns a wine lot by token id. Redeemed lots read as burned.
func (s *RegistryServiceImpl) GetWine(ctx context.Context, id int64) (*domain.WineLot, error) {
	lot, err := s.wineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wine lot: %w", err))
	}
	if lot == nil || lot.Redeemed {
		return nil, apperror.ErrWineNotFound()
	}
	return lot, nil
}

// ListWines returns all non-redeemed lots.
func (s *RegistryServiceImpl) ListWines(ctx context.Context) ([]domain.WineLot, error) {
	lots, err := s.wineRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list wine lots: %w", err))
	}
	return lots, nil
}

// TransferOwnership moves a lot to a new owner, guarding against races
// between check and act with a row lock and an expected-owner comparison.
func (s *RegistryServiceImpl) TransferOwnership(ctx context.Context, id int64, expectedCurrentOwner, newOwner uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lot, err := s.wineRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wine lot: %w", err))
	}
	if lot == nil {
		return apperror.ErrWineNotFound()
	}
	if lot.Redeemed {
		return apperror.ErrAlreadyRedeemed()
	}
	if lot.Owner != expectedCurrentOwner {
		return apperror.ErrOwnershipMismatch()
	}

	if err := s.wineRepo.UpdateOwner(ctx, dbTx, id, newOwner); err != nil {
		return apperror.InternalError(fmt.Errorf("update owner: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// MarkRedeemed irreversibly sets the redeemed flag. The caller-claimed
// owner must match the current owner.
func (s *RegistryServiceImpl) MarkRedeemed(ctx context.Context, id int64, expectedOwner uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lot, err := s.wineRepo.GetByIDForUpdate(ctx, dbTx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wine lot: %w", err))
	}
	if lot == nil {
		return apperror.ErrWineNotFound()
	}
	if lot.Redeemed {
		return apperror.ErrAlreadyRedeemed()
	}
	if lot.Owner != expectedOwner {
		return apperror.ErrOwnershipMismatch()
	}

	if err := s.wineRepo.MarkRedeemed(ctx, dbTx, id); err != nil {
		return apperror.InternalError(fmt.Errorf("mark redeemed: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// SetMaturityDate is the administrative override for a lot's maturity
// date. Normal trading never touches it.
func (s *RegistryServiceImpl) SetMaturityDate(ctx context.Context, caller uuid.UUID, id int64, maturityDate time.Time) error {
	if caller != s.admin {
		return apperror.ErrUnauthorized()
	}

	lot, err := s.wineRepo.GetByID(ctx, id)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get wine lot: %w", err))
	}
	if lot == nil {
		return apperror.ErrWineNotFound()
	}
	if lot.Redeemed {
		return apperror.ErrAlreadyRedeemed()
	}

	if err := s.wineRepo.SetMaturityDate(ctx, id, maturityDate); err != nil {
		return apperror.InternalError(fmt.Errorf("set maturity date: %w", err))
	}

	s.log.Info().
		Int64("token_id", id).
		Time("maturity_date", maturityDate).
		Msg("maturity date overridden")
	return nil
}

func (s *RegistryServiceImpl) decryptBalance(encrypted string) (int64, error) {
	balanceStr, err := s.encSvc.Decrypt(encrypted)
	if err != nil {
		return 0, apperror.ErrEncryptionFailure(fmt.Errorf("decrypt balance: %w", err))
	}
	balance, err := strconv.ParseInt(balanceStr, 10, 64)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("parse balance: %w", err))
	}
	return balance, nil
}

func (s *RegistryServiceImpl) encryptBalance(balance int64) (string, error) {
	enc, err := s.encSvc.Encrypt(strconv.FormatInt(balance, 10))
	if err != nil {
		return "", apperror.ErrEncryptionFailure(fmt.Errorf("encrypt balance: %w", err))
	}
	return enc, nil
}
