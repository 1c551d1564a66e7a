package handler

import (
	"strconv"
	"time"

	"wine-lot-exchange/internal/adapter/http/dto"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"
	"wine-lot-exchange/pkg/response"

	"github.com/gin-gonic/gin"
)

// WineHandler handles wine lot registry endpoints.
type WineHandler struct {
	registrySvc   ports.RegistryService
	redemptionSvc ports.RedemptionService
}

// NewWineHandler creates a new WineHandler.
func NewWineHandler(registrySvc ports.RegistryService, redemptionSvc ports.RedemptionService) *WineHandler {
	return &WineHandler{registrySvc: registrySvc, redemptionSvc: redemptionSvc}
}

// Mint handles POST /api/v1/wines.
func (h *WineHandler) Mint(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	maturity, err := time.Parse(time.RFC3339, req.MaturityDate)
	if err != nil {
		response.Error(c, apperror.Validation("maturity_date must be RFC 3339"))
		return
	}

	tokenID, err := h.registrySvc.Mint(c.Request.Context(), ports.MintRequest{
		Producer:        caller,
		Price:           req.Price,
		Vintage:         req.Vintage,
		GrapeVariety:    req.GrapeVariety,
		NumberOfBottles: req.NumberOfBottles,
		MaturityDate:    maturity,
		FeePaid:         req.FeePaid,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.MintResponse{TokenID: tokenID})
}

// Get handles GET /api/v1/wines/:id.
func (h *WineHandler) Get(c *gin.Context) {
	id, err := tokenIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	lot, err := h.registrySvc.GetWine(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWineResponse(lot))
}

// List handles GET /api/v1/wines — all non-redeemed lots.
func (h *WineHandler) List(c *gin.Context) {
	lots, err := h.registrySvc.ListWines(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.WineResponse, 0, len(lots))
	for i := range lots {
		out = append(out, dto.NewWineResponse(&lots[i]))
	}
	response.OK(c, out)
}

// SetMaturity handles PUT /api/v1/wines/:id/maturity (admin only).
func (h *WineHandler) SetMaturity(c *gin.Context) {
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

	var req dto.SetMaturityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	maturity, err := time.Parse(time.RFC3339, req.MaturityDate)
	if err != nil {
		response.Error(c, apperror.Validation("maturity_date must be RFC 3339"))
		return
	}

	if err := h.registrySvc.SetMaturityDate(c.Request.Context(), caller, id, maturity); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": id, "maturity_date": maturity.UTC().Format(time.RFC3339)})
}

// Redeem handles POST /api/v1/wines/:id/redeem.
func (h *WineHandler) Redeem(c *gin.Context) {
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

	if err := h.redemptionSvc.Redeem(c.Request.Context(), id, caller); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"token_id": id, "redeemed": true})
}

// tokenIDParam parses the :id path segment as a positive token id.
func tokenIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Validation("id must be a positive integer")
	}
	return id, nil
}
