package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/dto"
)

// AccountHandler handles ledger account HTTP requests
type AccountHandler struct {
	accountUseCase usecase.AccountUseCase
	logger         coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(accountUseCase usecase.AccountUseCase, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{
		accountUseCase: accountUseCase,
		logger:         logger,
	}
}

// GetBalance handles the GET /accounts/:principal/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	principal, err := entity.ParsePrincipal(c.Param("principal"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	balance, err := h.accountUseCase.GetBalance(c.Request.Context(), principal)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toBalanceResponse(balance))
}

// Deposit handles the POST /accounts/:principal/deposit endpoint
func (h *AccountHandler) Deposit(c *gin.Context) {
	principal, err := entity.ParsePrincipal(c.Param("principal"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}

	balance, err := h.accountUseCase.Deposit(c.Request.Context(), principal, req.Amount)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toBalanceResponse(balance))
}

// Withdraw handles the POST /accounts/:principal/withdraw endpoint
func (h *AccountHandler) Withdraw(c *gin.Context) {
	owner, err := caller(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	principal, err := entity.ParsePrincipal(c.Param("principal"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}

	balance, err := h.accountUseCase.Withdraw(c.Request.Context(), owner, principal, req.Amount)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toBalanceResponse(balance))
}

func toBalanceResponse(balance *usecase.AccountBalanceResponse) dto.BalanceResponse {
	return dto.BalanceResponse{
		Principal:     balance.Principal,
		Balance:       balance.Balance,
		BalanceUnits:  balance.BalanceUnits,
		TransferCount: balance.TransferCount,
	}
}
