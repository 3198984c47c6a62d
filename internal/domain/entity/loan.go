package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
)

// LoanStatus is the lifecycle stage of a loan derived from its flags
type LoanStatus string

const (
	LoanStatusRequested LoanStatus = "requested"
	LoanStatusFunded    LoanStatus = "funded"
	LoanStatusRepaid    LoanStatus = "repaid"
	LoanStatusClaimed   LoanStatus = "claimed"
)

// MaxLoanDurationSeconds caps the loan term at 100 years
const MaxLoanDurationSeconds int64 = 100 * 365 * 24 * 60 * 60

// ParseLoanStatus validates a status filter value
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch LoanStatus(s) {
	case LoanStatusRequested, LoanStatusFunded, LoanStatusRepaid, LoanStatusClaimed:
		return LoanStatus(s), nil
	default:
		return "", fmt.Errorf("%w: unknown loan status %q", errs.ErrInvalidRequest, s)
	}
}

// Loan is a single collateralized loan record
type Loan struct {
	ID                  uint64
	Borrower            Principal
	Lender              *Principal // nil until funded
	CollateralAmount    Amount
	LoanAmount          Amount
	InterestRatePercent uint64
	DueAt               time.Time
	IsFunded            bool
	IsRepaid            bool
	IsClaimed           bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
	FundedAt            *time.Time
	RepaidAt            *time.Time
	ClaimedAt           *time.Time
}

// LoanAmountFor returns the loan offered against the given collateral
func LoanAmountFor(collateral Amount) Amount {
	return PercentOf(collateral, CollateralRatioPercent)
}

// NewLoan validates the request and builds a loan awaiting a lender
func NewLoan(
	id uint64,
	borrower Principal,
	collateral Amount,
	interestRatePercent uint64,
	durationSeconds int64,
	now time.Time,
) (*Loan, error) {
	if !collateral.IsInteger() || !collateral.IsPositive() {
		return nil, fmt.Errorf("%w: collateral must be a positive integer", errs.ErrInvalidAmount)
	}

	loanAmount := LoanAmountFor(collateral)
	if !loanAmount.IsPositive() {
		return nil, fmt.Errorf("%w: collateral %s yields a zero loan amount", errs.ErrInvalidAmount, collateral.String())
	}

	if durationSeconds <= 0 || durationSeconds > MaxLoanDurationSeconds {
		return nil, fmt.Errorf("%w: %d seconds", errs.ErrInvalidDuration, durationSeconds)
	}

	return &Loan{
		ID:                  id,
		Borrower:            borrower,
		CollateralAmount:    collateral,
		LoanAmount:          loanAmount,
		InterestRatePercent: interestRatePercent,
		DueAt:               now.Add(time.Duration(durationSeconds) * time.Second),
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// RepaymentAmount is the principal plus truncated interest
func (l *Loan) RepaymentAmount() Amount {
	return l.LoanAmount.Add(PercentOf(l.LoanAmount, l.InterestRatePercent))
}

// Status derives the lifecycle stage
func (l *Loan) Status() LoanStatus {
	switch {
	case l.IsClaimed:
		return LoanStatusClaimed
	case l.IsRepaid:
		return LoanStatusRepaid
	case l.IsFunded:
		return LoanStatusFunded
	default:
		return LoanStatusRequested
	}
}

// IsOverdue reports whether the repayment window has closed at now
func (l *Loan) IsOverdue(now time.Time) bool {
	return !now.Before(l.DueAt)
}

// Fund records lender as the funder after checking value matches the loan amount
func (l *Loan) Fund(lender Principal, value Amount, now time.Time) error {
	if l.IsFunded {
		return errs.ErrAlreadyFunded
	}
	if !value.Equal(l.LoanAmount) {
		return fmt.Errorf("%w: expected %s, got %s", errs.ErrIncorrectAmount, l.LoanAmount.String(), value.String())
	}

	l.Lender = &lender
	l.IsFunded = true
	l.FundedAt = &now
	l.UpdatedAt = now
	return nil
}

// checkSettleable verifies the loan is funded and neither terminal state was reached
func (l *Loan) checkSettleable() error {
	if !l.IsFunded {
		return errs.ErrNotFunded
	}
	if l.IsRepaid {
		return errs.ErrAlreadyRepaid
	}
	if l.IsClaimed {
		return errs.ErrCollateralClaimed
	}
	return nil
}

// Repay marks the loan repaid if caller is the borrower, the deadline has not
// passed and value equals the repayment amount
func (l *Loan) Repay(caller Principal, value Amount, now time.Time) error {
	if err := l.checkSettleable(); err != nil {
		return err
	}
	if caller != l.Borrower {
		return errs.ErrNotBorrower
	}
	if l.IsOverdue(now) {
		return fmt.Errorf("%w: due at %s", errs.ErrLoanOverdue, l.DueAt.UTC().Format(time.RFC3339))
	}
	required := l.RepaymentAmount()
	if !value.Equal(required) {
		return fmt.Errorf("%w: expected %s, got %s", errs.ErrIncorrectAmount, required.String(), value.String())
	}

	l.IsRepaid = true
	l.RepaidAt = &now
	l.UpdatedAt = now
	return nil
}

// Claim marks the collateral seized if caller is the lender and the deadline has passed
func (l *Loan) Claim(caller Principal, now time.Time) error {
	if err := l.checkSettleable(); err != nil {
		return err
	}
	if l.Lender == nil || caller != *l.Lender {
		return errs.ErrNotLender
	}
	if !l.IsOverdue(now) {
		return fmt.Errorf("%w: due at %s", errs.ErrNotYetDue, l.DueAt.UTC().Format(time.RFC3339))
	}

	l.IsClaimed = true
	l.ClaimedAt = &now
	l.UpdatedAt = now
	return nil
}

// LenderString returns the lender identifier or an empty string when unset
func (l *Loan) LenderString() string {
	if l.Lender == nil {
		return ""
	}
	return l.Lender.String()
}
