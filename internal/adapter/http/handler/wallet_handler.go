package handler

import (
	"wine-lot-exchange/internal/adapter/http/dto"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/pkg/apperror"
	"wine-lot-exchange/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// GetBalance handles GET /api/v1/wallets/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	balance, currency, err := h.walletSvc.GetBalance(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WalletBalanceResponse{
		Balance:  balance,
		Currency: currency,
	})
}

// Topup handles POST /api/v1/wallets/topup.
func (h *WalletHandler) Topup(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TopupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	newBalance, err := h.walletSvc.Topup(c.Request.Context(), caller, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"balance": newBalance})
}
