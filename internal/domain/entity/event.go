package entity

import "time"

// LoanEventType names an observable loan transition
type LoanEventType string

const (
	EventLoanRequested     LoanEventType = "LoanRequested"
	EventLoanFunded        LoanEventType = "LoanFunded"
	EventLoanRepaid        LoanEventType = "LoanRepaid"
	EventCollateralClaimed LoanEventType = "CollateralClaimed"
)

// LoanEvent is emitted once per successful transition.
// Principal is the actor of the transition: the borrower for requests and
// repayments, the lender for funding and claims.
type LoanEvent struct {
	Sequence            uint64        `json:"sequence,omitempty"`
	Type                LoanEventType `json:"type"`
	LoanID              uint64        `json:"loanId"`
	Principal           Principal     `json:"principal"`
	Lender              *Principal    `json:"lender"`
	CollateralAmount    *Amount       `json:"collateralAmount,omitempty"`
	LoanAmount          *Amount       `json:"loanAmount,omitempty"`
	InterestRatePercent *uint64       `json:"interestRatePercent,omitempty"`
	DueAt               *time.Time    `json:"dueAt,omitempty"`
	Amount              *Amount       `json:"amount,omitempty"`
	Timestamp           time.Time     `json:"timestamp"`
}

// NewLoanRequestedEvent carries the full terms of a new loan with no lender
func NewLoanRequestedEvent(loan *Loan) *LoanEvent {
	collateral := loan.CollateralAmount
	loanAmount := loan.LoanAmount
	rate := loan.InterestRatePercent
	dueAt := loan.DueAt
	return &LoanEvent{
		Type:                EventLoanRequested,
		LoanID:              loan.ID,
		Principal:           loan.Borrower,
		CollateralAmount:    &collateral,
		LoanAmount:          &loanAmount,
		InterestRatePercent: &rate,
		DueAt:               &dueAt,
		Timestamp:           loan.CreatedAt,
	}
}

// NewLoanFundedEvent records the lender and the value forwarded to the borrower
func NewLoanFundedEvent(loan *Loan, now time.Time) *LoanEvent {
	amount := loan.LoanAmount
	return &LoanEvent{
		Type:      EventLoanFunded,
		LoanID:    loan.ID,
		Principal: *loan.Lender,
		Lender:    loan.Lender,
		Amount:    &amount,
		Timestamp: now,
	}
}

// NewLoanRepaidEvent records the borrower and the repayment forwarded to the lender
func NewLoanRepaidEvent(loan *Loan, now time.Time) *LoanEvent {
	amount := loan.RepaymentAmount()
	return &LoanEvent{
		Type:      EventLoanRepaid,
		LoanID:    loan.ID,
		Principal: loan.Borrower,
		Lender:    loan.Lender,
		Amount:    &amount,
		Timestamp: now,
	}
}

// NewCollateralClaimedEvent records the lender and the collateral released to them
func NewCollateralClaimedEvent(loan *Loan, now time.Time) *LoanEvent {
	amount := loan.CollateralAmount
	return &LoanEvent{
		Type:      EventCollateralClaimed,
		LoanID:    loan.ID,
		Principal: *loan.Lender,
		Lender:    loan.Lender,
		Amount:    &amount,
		Timestamp: now,
	}
}
