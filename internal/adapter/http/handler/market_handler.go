package handler

import (
	"wine-lot-exchange/internal/adapter/http/dto"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"
	"wine-lot-exchange/pkg/response"

	"github.com/gin-gonic/gin"
)

// MarketHandler handles marketplace listing endpoints.
type MarketHandler struct {
	marketSvc   ports.MarketplaceService
	listingRepo ports.ListingRepository
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc ports.MarketplaceService, listingRepo ports.ListingRepository) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc, listingRepo: listingRepo}
}

// Create handles POST /api/v1/listings.
func (h *MarketHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	listing, err := h.marketSvc.List(c.Request.Context(), req.TokenID, req.Price, caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewListingResponse(listing))
}

// ListActive handles GET /api/v1/listings — all active listings.
func (h *MarketHandler) ListActive(c *gin.Context) {
	listings, err := h.listingRepo.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	out := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		out = append(out, dto.NewListingResponse(&listings[i]))
	}
	response.OK(c, out)
}

// Buy handles POST /api/v1/listings/:id/buy.
func (h *MarketHandler) Buy(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := tokenIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.marketSvc.Buy(c.Request.Context(), id, req.Payment, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": id, "owner": caller.String()})
}

// Cancel handles DELETE /api/v1/listings/:id.
func (h *MarketHandler) Cancel(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	id, err := tokenIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.marketSvc.Cancel(c.Request.Context(), id, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": id, "active": false})
}
