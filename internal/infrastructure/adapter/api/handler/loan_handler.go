package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/dto"
)

// payableCall is a registry operation on an existing loan with attached value
type payableCall func(ctx context.Context, caller entity.Principal, loanID uint64, value string) (*entity.Loan, error)

// LoanHandler handles loan registry HTTP requests
type LoanHandler struct {
	loanUseCase usecase.LoanUseCase
	logger      coreport.Logger
}

// NewLoanHandler creates a new loan handler instance
func NewLoanHandler(loanUseCase usecase.LoanUseCase, logger coreport.Logger) *LoanHandler {
	return &LoanHandler{
		loanUseCase: loanUseCase,
		logger:      logger,
	}
}

// RequestLoan handles the POST /loans endpoint
func (h *LoanHandler) RequestLoan(c *gin.Context) {
	borrower, err := caller(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var req dto.RequestLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}

	loan, err := h.loanUseCase.RequestLoan(c.Request.Context(), borrower, usecase.RequestLoanInput{
		InterestRatePercent: *req.InterestRatePercent,
		DurationSeconds:     *req.DurationSeconds,
		CollateralAmount:    req.CollateralAmount,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewLoanResponse(loan))
}

// FundLoan handles the POST /loans/:loanId/fund endpoint
func (h *LoanHandler) FundLoan(c *gin.Context) {
	h.settle(c, h.loanUseCase.FundLoan)
}

// RepayLoan handles the POST /loans/:loanId/repay endpoint
func (h *LoanHandler) RepayLoan(c *gin.Context) {
	h.settle(c, h.loanUseCase.RepayLoan)
}

// settle runs a payable call on an existing loan
func (h *LoanHandler) settle(c *gin.Context, call payableCall) {
	principal, err := caller(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	loanID, err := loanIDParam(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var req dto.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}

	loan, err := call(c.Request.Context(), principal, loanID, req.Amount)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoanResponse(loan))
}

// ClaimCollateral handles the POST /loans/:loanId/claim endpoint
func (h *LoanHandler) ClaimCollateral(c *gin.Context) {
	lender, err := caller(c)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	loanID, err := loanIDParam(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	loan, err := h.loanUseCase.ClaimCollateral(c.Request.Context(), lender, loanID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoanResponse(loan))
}

// GetLoan handles the GET /loans/:loanId endpoint
func (h *LoanHandler) GetLoan(c *gin.Context) {
	loanID, err := loanIDParam(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	loan, err := h.loanUseCase.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoanResponse(loan))
}

// ListLoans handles the GET /loans endpoint
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var filter persistence.LoanFilter

	if raw, ok := c.GetQuery("borrower"); ok {
		borrower, err := entity.ParsePrincipal(raw)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		filter.Borrower = &borrower
	}
	if raw, ok := c.GetQuery("lender"); ok {
		lender, err := entity.ParsePrincipal(raw)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		filter.Lender = &lender
	}
	if raw, ok := c.GetQuery("status"); ok {
		status, err := entity.ParseLoanStatus(raw)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		filter.Status = &status
	}

	var err error
	if filter.Offset, err = intQuery(c, "offset"); err != nil {
		badRequest(c, "offset must be an integer")
		return
	}
	if filter.Limit, err = intQuery(c, "limit"); err != nil {
		badRequest(c, "limit must be an integer")
		return
	}

	loans, err := h.loanUseCase.ListLoans(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLoanListResponse(loans))
}

// ListLoanEvents handles the GET /loans/:loanId/events endpoint
func (h *LoanHandler) ListLoanEvents(c *gin.Context) {
	loanID, err := loanIDParam(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	events, err := h.loanUseCase.ListLoanEvents(c.Request.Context(), loanID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoanEventsResponse{
		LoanID: loanID,
		Events: events,
	})
}

// intQuery reads an optional integer query parameter
func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
