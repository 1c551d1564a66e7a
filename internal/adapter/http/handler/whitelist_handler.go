package handler

import (
	"wine-lot-exchange/internal/adapter/http/dto"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"
	"wine-lot-exchange/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WhitelistHandler handles the trading access control list (admin only).
type WhitelistHandler struct {
	whitelistSvc ports.WhitelistService
}

// NewWhitelistHandler creates a new WhitelistHandler.
func NewWhitelistHandler(whitelistSvc ports.WhitelistService) *WhitelistHandler {
	return &WhitelistHandler{whitelistSvc: whitelistSvc}
}

// Add handles POST /api/v1/whitelist.
func (h *WhitelistHandler) Add(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.WhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	principal, err := uuid.Parse(req.AccountID)
	if err != nil {
		response.Error(c, apperror.Validation("account_id must be a valid UUID"))
		return
	}

	if err := h.whitelistSvc.AddAddress(c.Request.Context(), caller, principal); err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, gin.H{"account_id": principal.String(), "whitelisted": true})
}

// Remove handles DELETE /api/v1/whitelist/:id.
func (h *WhitelistHandler) Remove(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	principal, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("id must be a valid UUID"))
		return
	}

	if err := h.whitelistSvc.RemoveAddress(c.Request.Context(), caller, principal); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"account_id": principal.String(), "whitelisted": false})
}
