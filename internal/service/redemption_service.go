package service

import (
	"context"
	"fmt"
	"time"

	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RedemptionServiceImpl implements ports.RedemptionService. Redemption
// is the terminal transition of a wine lot: once redeemed, the lot can
// never again be listed, sold, or redeemed, and registry lookups treat
// it as gone.
type RedemptionServiceImpl struct {
	wineRepo    ports.WineRepository
	listingRepo ports.ListingRepository
	transactor  ports.DBTransactor
	webhookSvc  ports.WebhookService
	log         zerolog.Logger

	// now is injectable for maturity-window tests.
	now func() time.Time
}

// NewRedemptionService creates a new RedemptionServiceImpl.
// webhookSvc may be nil to disable redemption notifications.
func NewRedemptionService(
	wineRepo ports.WineRepository,
	listingRepo ports.ListingRepository,
	transactor ports.DBTransactor,
	webhookSvc ports.WebhookService,
	log zerolog.Logger,
) *RedemptionServiceImpl {
	return &RedemptionServiceImpl{
		wineRepo:    wineRepo,
		listingRepo: listingRepo,
		transactor:  transactor,
		webhookSvc:  webhookSvc,
		log:         log,
		now:         time.Now,
	}
}

// Redeem marks a mature lot redeemed. Check order: exists, caller owns
// it, not already redeemed, maturity date reached. Any active listing
// for the lot is retired in the same transaction so a redeemed lot can
// never be bought.
func (s *RedemptionServiceImpl) Redeem(ctx context.Context, tokenID int64, caller uuid.UUID) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	lot, err := s.wineRepo.GetByIDForUpdate(ctx, dbTx, tokenID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock wine lot: %w", err))
	}
	if lot == nil {
		return apperror.ErrWineNotFound()
	}
	if lot.Owner != caller {
		return apperror.ErrNotOwner()
	}
	if lot.Redeemed {
		return apperror.ErrAlreadyRedeemed()
	}
	if !lot.IsMature(s.now().UTC()) {
		return apperror.ErrNotMature()
	}

	if err := s.wineRepo.MarkRedeemed(ctx, dbTx, tokenID); err != nil {
		return apperror.InternalError(fmt.Errorf("mark redeemed: %w", err))
	}
	if err := s.listingRepo.Deactivate(ctx, dbTx, tokenID); err != nil {
		return apperror.InternalError(fmt.Errorf("retire listing: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if s.webhookSvc != nil {
		_ = s.webhookSvc.EnqueueTradeEvent(ctx, ports.TradeEvent{
			EventType: "LOT_REDEEMED",
			TokenID:   tokenID,
			Recipient: caller,
		})
	}

	s.log.Info().
		Int64("token_id", tokenID).
		Str("owner", caller.String()).
		Msg("wine lot redeemed")
	return nil
}
