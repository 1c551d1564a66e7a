package service

import (
	"context"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DistributorServiceImpl implements ports.DistributorService. It is a
// stateless facade for distributor integrations: every call forwards to
// the marketplace or redemption service unchanged, so error kinds and
// their ordering are exactly those of the underlying services.
type DistributorServiceImpl struct {
	marketSvc ports.MarketplaceService
	redeemSvc ports.RedemptionService
	log       zerolog.Logger
}

// NewDistributorService creates a new DistributorServiceImpl.
func NewDistributorService(
	marketSvc ports.MarketplaceService,
	redeemSvc ports.RedemptionService,
	log zerolog.Logger,
) *DistributorServiceImpl {
	return &DistributorServiceImpl{
		marketSvc: marketSvc,
		redeemSvc: redeemSvc,
		log:       log,
	}
}

// BuyWine forwards a purchase to the marketplace.
func (s *DistributorServiceImpl) BuyWine(ctx context.Context, tokenID int64, payment int64, caller uuid.UUID) error {
	s.log.Debug().Int64("token_id", tokenID).Str("caller", caller.String()).Msg("distributor purchase")
	return s.marketSvc.Buy(ctx, tokenID, payment, caller)
}

// RedeemWineNFT forwards a redemption.
func (s *DistributorServiceImpl) RedeemWineNFT(ctx context.Context, tokenID int64, caller uuid.UUID) error {
	s.log.Debug().Int64("token_id", tokenID).Str("caller", caller.String()).Msg("distributor redemption")
	return s.redeemSvc.Redeem(ctx, tokenID, caller)
}

// ListWineForResale forwards a resale listing to the marketplace.
func (s *DistributorServiceImpl) ListWineForResale(ctx context.Context, tokenID int64, price int64, caller uuid.UUID) (*domain.Listing, error) {
	s.log.Debug().Int64("token_id", tokenID).Str("caller", caller.String()).Msg("distributor resale listing")
	return s.marketSvc.List(ctx, tokenID, price, caller)
}
