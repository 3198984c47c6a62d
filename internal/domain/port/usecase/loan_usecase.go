package usecase

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// RequestLoanInput carries the terms of a new loan request
type RequestLoanInput struct {
	InterestRatePercent uint64
	DurationSeconds     int64
	CollateralAmount    string // base units, attached value of the call
}

// LoanUseCase defines the registry operations
type LoanUseCase interface {
	// RequestLoan locks the attached collateral and creates a loan awaiting a lender
	RequestLoan(ctx context.Context, caller entity.Principal, input RequestLoanInput) (*entity.Loan, error)

	// FundLoan makes caller the lender; value must equal the loan amount
	FundLoan(ctx context.Context, caller entity.Principal, loanID uint64, value string) (*entity.Loan, error)

	// RepayLoan settles the loan; value must equal principal plus interest
	RepayLoan(ctx context.Context, caller entity.Principal, loanID uint64, value string) (*entity.Loan, error)

	// ClaimCollateral releases the collateral of a defaulted loan to its lender
	ClaimCollateral(ctx context.Context, caller entity.Principal, loanID uint64) (*entity.Loan, error)

	// GetLoan returns a loan record
	GetLoan(ctx context.Context, loanID uint64) (*entity.Loan, error)

	// ListLoans returns loans matching filter ordered by id
	ListLoans(ctx context.Context, filter persistence.LoanFilter) ([]*entity.Loan, error)

	// ListLoanEvents returns the events of a loan in emission order
	ListLoanEvents(ctx context.Context, loanID uint64) ([]*entity.LoanEvent, error)
}
