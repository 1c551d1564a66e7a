package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// MarketplaceServiceImpl implements ports.MarketplaceService: the escrow
// state machine spanning listings, ownership transfer, and settlement.
//
// Buy commits ownership transfer and payment settlement as one database
// transaction holding row locks on the listing, the lot, and both
// wallets. Either every effect lands or none does; two concurrent
// purchases of the same listing cannot both succeed.
type MarketplaceServiceImpl struct {
	wineRepo     ports.WineRepository
	listingRepo  ports.ListingRepository
	walletRepo   ports.WalletRepository
	whitelistSvc ports.WhitelistService
	encSvc       ports.EncryptionService
	transactor   ports.DBTransactor
	webhookSvc   ports.WebhookService
	log          zerolog.Logger
}

// NewMarketplaceService creates a new MarketplaceServiceImpl.
// webhookSvc may be nil to disable sale notifications.
func NewMarketplaceService(
	wineRepo ports.WineRepository,
	listingRepo ports.ListingRepository,
	walletRepo ports.WalletRepository,
	whitelistSvc ports.WhitelistService,
	encSvc ports.EncryptionService,
	transactor ports.DBTransactor,
	webhookSvc ports.WebhookService,
	log zerolog.Logger,
) *MarketplaceServiceImpl {
	return &MarketplaceServiceImpl{
		wineRepo:     wineRepo,
		listingRepo:  listingRepo,
		walletRepo:   walletRepo,
		whitelistSvc: whitelistSvc,
		encSvc:       encSvc,
		transactor:   transactor,
		webhookSvc:   webhookSvc,
		log:          log,
	}
}

// List creates or overwrites the listing slot for a token.
// Precondition order: exists, whitelisted, owner, not redeemed, price > 0.
func (s *MarketplaceServiceImpl) List(ctx context.Context, tokenID int64, price int64, caller uuid.UUID) (*domain.Listing, error) {
	lot, err := s.wineRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wine lot: %w", err))
	}
	if lot == nil {
		return nil, apperror.ErrWineNotFound()
	}

	whitelisted, err := s.whitelistSvc.IsWhitelisted(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !whitelisted {
		return nil, apperror.ErrNotWhitelisted()
	}

	if lot.Owner != caller {
		return nil, apperror.ErrNotOwner()
	}
	if lot.Redeemed {
		return nil, apperror.ErrAlreadyRedeemed()
	}
	if price <= 0 {
		return nil, apperror.ErrInvalidPrice()
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		TokenID:   tokenID,
		Seller:    caller,
		Price:     price,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.listingRepo.Upsert(ctx, dbTx, listing); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert listing: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("token_id", tokenID).
		Str("seller", caller.String()).
		Int64("price", price).
		Msg("wine lot listed")

	return listing, nil
}

// Buy purchases a listed lot. Precondition order: listed, whitelisted,
// not self-purchase, payment covers price. The effect is indivisible:
// ownership transfer, settlement of the full payment to the seller, and
// listing deactivation commit together or not at all.
//
// Overpayment policy: the entire payment (not just the price) is
// forwarded to the seller with no refund of the excess.
func (s *MarketplaceServiceImpl) Buy(ctx context.Context, tokenID int64, payment int64, caller uuid.UUID) error {
	listing, err := s.listingRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil || !listing.Active {
		return apperror.ErrNotListed()
	}

	whitelisted, err := s.whitelistSvc.IsWhitelisted(ctx, caller)
	if err != nil {
		return err
	}
	if !whitelisted {
		return apperror.ErrNotWhitelisted()
	}

	if caller == listing.Seller {
		return apperror.ErrSelfPurchase()
	}
	if payment < listing.Price {
		return apperror.ErrInsufficientPayment()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-read under lock. A concurrent purchase deactivates the listing
	// before its commit, so the second buyer observes it here.
	listing, err = s.listingRepo.GetByTokenIDForUpdate(ctx, dbTx, tokenID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock listing: %w", err))
	}
	if listing == nil || !listing.Active {
		return apperror.ErrNotListed()
	}
	if caller == listing.Seller {
		return apperror.ErrSelfPurchase()
	}
	if payment < listing.Price {
		return apperror.ErrInsufficientPayment()
	}

	lot, err := s.wineRepo.GetByIDForUpdate(ctx, dbTx, tokenID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wine lot: %w", err))
	}
	if lot == nil {
		return apperror.ErrWineNotFound()
	}
	if lot.Redeemed {
		return apperror.ErrAlreadyRedeemed()
	}
	// The listing may have gone stale if ownership changed out-of-band
	// since it was created.
	if lot.Owner != listing.Seller {
		return apperror.ErrStaleListing()
	}

	buyerWallet, sellerWallet, err := s.lockWallets(ctx, dbTx, caller, listing.Seller)
	if err != nil {
		return err
	}

	buyerBalance, err := s.decryptBalance(buyerWallet.EncryptedBalance)
	if err != nil {
		return err
	}
	if buyerBalance < payment {
		return apperror.ErrInsufficientFunds()
	}
	sellerBalance, err := s.decryptBalance(sellerWallet.EncryptedBalance)
	if err != nil {
		return err
	}

	newBuyerEnc, err := s.encryptBalance(buyerBalance - payment)
	if err != nil {
		return err
	}
	newSellerEnc, err := s.encryptBalance(sellerBalance + payment)
	if err != nil {
		return err
	}

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, buyerWallet.ID, newBuyerEnc); err != nil {
		return apperror.InternalError(fmt.Errorf("debit buyer: %w", err))
	}
	if err := s.walletRepo.UpdateBalance(ctx, dbTx, sellerWallet.ID, newSellerEnc); err != nil {
		return apperror.InternalError(fmt.Errorf("credit seller: %w", err))
	}
	if err := s.wineRepo.UpdateOwner(ctx, dbTx, tokenID, caller); err != nil {
		return apperror.InternalError(fmt.Errorf("transfer ownership: %w", err))
	}
	if err := s.listingRepo.Deactivate(ctx, dbTx, tokenID); err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate listing: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if s.webhookSvc != nil {
		buyer := caller
		_ = s.webhookSvc.EnqueueTradeEvent(ctx, ports.TradeEvent{
			EventType: "SALE_COMPLETED",
			TokenID:   tokenID,
			Recipient: listing.Seller,
			Price:     listing.Price,
			Payment:   payment,
			Buyer:     &buyer,
		})
	}

	s.log.Info().
		Int64("token_id", tokenID).
		Str("buyer", caller.String()).
		Str("seller", listing.Seller.String()).
		Int64("payment", payment).
		Msg("wine lot sold")

	return nil
}

// Cancel deactivates the caller's own listing. No other state changes.
func (s *MarketplaceServiceImpl) Cancel(ctx context.Context, tokenID int64, caller uuid.UUID) error {
	listing, err := s.listingRepo.GetByTokenID(ctx, tokenID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get listing: %w", err))
	}
	if listing == nil || !listing.Active {
		return apperror.ErrNotListed()
	}
	if listing.Seller != caller {
		return apperror.ErrNotOwner()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.listingRepo.Deactivate(ctx, dbTx, tokenID); err != nil {
		return apperror.InternalError(fmt.Errorf("deactivate listing: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Int64("token_id", tokenID).
		Str("seller", caller.String()).
		Msg("listing cancelled")
	return nil
}

// lockWallets acquires both wallet row locks in UUID order so that two
// opposing purchases cannot deadlock.
func (s *MarketplaceServiceImpl) lockWallets(ctx context.Context, tx pgx.Tx, buyer, seller uuid.UUID) (*domain.Wallet, *domain.Wallet, error) {
	first, second := buyer, seller
	if bytes.Compare(seller[:], buyer[:]) < 0 {
		first, second = seller, buyer
	}

	firstWallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, tx, first)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	secondWallet, err := s.walletRepo.GetByAccountIDForUpdate(ctx, tx, second)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	walletOf := func(id uuid.UUID) *domain.Wallet {
		if firstWallet != nil && firstWallet.AccountID == id {
			return firstWallet
		}
		if secondWallet != nil && secondWallet.AccountID == id {
			return secondWallet
		}
		return nil
	}

	buyerWallet := walletOf(buyer)
	sellerWallet := walletOf(seller)
	if buyerWallet == nil || sellerWallet == nil {
		return nil, nil, apperror.ErrWalletNotFound()
	}
	return buyerWallet, sellerWallet, nil
}

func (s *MarketplaceServiceImpl) decryptBalance(encrypted string) (int64, error) {
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

func (s *MarketplaceServiceImpl) encryptBalance(balance int64) (string, error) {
	enc, err := s.encSvc.Encrypt(strconv.FormatInt(balance, 10))
	if err != nil {
		return "", apperror.ErrEncryptionFailure(fmt.Errorf("encrypt balance: %w", err))
	}
	return enc, nil
}
