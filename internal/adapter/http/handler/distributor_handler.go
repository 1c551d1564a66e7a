package handler

import (
	"wine-lot-exchange/internal/adapter/http/dto"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"
	"wine-lot-exchange/pkg/response"

	"github.com/gin-gonic/gin"
)

// DistributorHandler handles the distributor integration facade.
type DistributorHandler struct {
	distributorSvc ports.DistributorService
}

// NewDistributorHandler creates a new DistributorHandler.
func NewDistributorHandler(distributorSvc ports.DistributorService) *DistributorHandler {
	return &DistributorHandler{distributorSvc: distributorSvc}
}

// Purchase handles POST /api/v1/distributor/purchases.
func (h *DistributorHandler) Purchase(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DistributorPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.distributorSvc.BuyWine(c.Request.Context(), req.TokenID, req.Payment, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": req.TokenID, "owner": caller.String()})
}

// Redemption handles POST /api/v1/distributor/redemptions.
func (h *DistributorHandler) Redemption(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DistributorRedemptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	if err := h.distributorSvc.RedeemWineNFT(c.Request.Context(), req.TokenID, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": req.TokenID, "redeemed": true})
}

// Resale handles POST /api/v1/distributor/resales.
func (h *DistributorHandler) Resale(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.DistributorResaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	listing, err := h.distributorSvc.ListWineForResale(c.Request.Context(), req.TokenID, req.Price, caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewListingResponse(listing))
}
