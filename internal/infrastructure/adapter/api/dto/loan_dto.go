package dto

import (
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// RequestLoanRequest represents the API request for a new loan
type RequestLoanRequest struct {
	InterestRatePercent *uint64 `json:"interestRatePercent" binding:"required"`
	DurationSeconds     *int64  `json:"durationSeconds" binding:"required"`
	CollateralAmount    string  `json:"collateralAmount" binding:"required"`
}

// LoanResponse represents a loan record
type LoanResponse struct {
	LoanID              uint64     `json:"loanId"`
	Borrower            string     `json:"borrower"`
	Lender              *string    `json:"lender"`
	CollateralAmount    string     `json:"collateralAmount"`
	LoanAmount          string     `json:"loanAmount"`
	RepaymentAmount     string     `json:"repaymentAmount"`
	InterestRatePercent uint64     `json:"interestRatePercent"`
	DueAt               time.Time  `json:"dueAt"`
	Status              string     `json:"status"`
	IsFunded            bool       `json:"isFunded"`
	IsRepaid            bool       `json:"isRepaid"`
	IsClaimed           bool       `json:"isClaimed"`
	CreatedAt           time.Time  `json:"createdAt"`
	FundedAt            *time.Time `json:"fundedAt,omitempty"`
	RepaidAt            *time.Time `json:"repaidAt,omitempty"`
	ClaimedAt           *time.Time `json:"claimedAt,omitempty"`
}

// LoanListResponse represents a page of loans
type LoanListResponse struct {
	Loans []LoanResponse `json:"loans"`
	Count int            `json:"count"`
}

// LoanEventsResponse represents the event log of one loan
type LoanEventsResponse struct {
	LoanID uint64              `json:"loanId"`
	Events []*entity.LoanEvent `json:"events"`
}

// NewLoanResponse converts a loan entity
func NewLoanResponse(loan *entity.Loan) LoanResponse {
	var lender *string
	if loan.Lender != nil {
		s := loan.Lender.String()
		lender = &s
	}

	return LoanResponse{
		LoanID:              loan.ID,
		Borrower:            loan.Borrower.String(),
		Lender:              lender,
		CollateralAmount:    entity.FormatAmount(loan.CollateralAmount),
		LoanAmount:          entity.FormatAmount(loan.LoanAmount),
		RepaymentAmount:     entity.FormatAmount(loan.RepaymentAmount()),
		InterestRatePercent: loan.InterestRatePercent,
		DueAt:               loan.DueAt.UTC(),
		Status:              string(loan.Status()),
		IsFunded:            loan.IsFunded,
		IsRepaid:            loan.IsRepaid,
		IsClaimed:           loan.IsClaimed,
		CreatedAt:           loan.CreatedAt.UTC(),
		FundedAt:            loan.FundedAt,
		RepaidAt:            loan.RepaidAt,
		ClaimedAt:           loan.ClaimedAt,
	}
}

// NewLoanListResponse converts a page of loan entities
func NewLoanListResponse(loans []*entity.Loan) LoanListResponse {
	resp := LoanListResponse{
		Loans: make([]LoanResponse, 0, len(loans)),
		Count: len(loans),
	}
	for _, loan := range loans {
		resp.Loans = append(resp.Loans, NewLoanResponse(loan))
	}
	return resp
}
