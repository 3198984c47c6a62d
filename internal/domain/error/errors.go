package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidAmount       = 4001
	CodeInvalidDuration     = 4002
	CodeIncorrectAmount     = 4003
	CodeInsufficientBalance = 4004
	CodeInvalidPrincipal    = 4005
	CodeInvalidRequest      = 4006
	CodeNotBorrower         = 4030
	CodeNotLender           = 4031
	CodeNotAccountOwner     = 4032
	CodeLoanNotFound        = 4040
	CodeAccountNotFound     = 4041
	CodeAlreadyFunded       = 4090
	CodeNotFunded           = 4091
	CodeAlreadyRepaid       = 4092
	CodeCollateralClaimed   = 4093
	CodeNotYetDue           = 4094
	CodeLoanOverdue         = 4095
	CodeReentrantCall       = 4096
	CodeDuplicateRequest    = 4097

	// 5xxx - Server errors
	CodeInternalServer = 5000
	CodeRegistryClosed = 5030
)

// Loan lifecycle errors
var (
	// ErrInvalidAmount is returned when a value is zero, negative, fractional or malformed
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidDuration is returned when a loan duration is not a positive number of seconds
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrLoanNotFound is returned when no loan exists for the given identifier
	ErrLoanNotFound = errors.New("loan not found")

	// ErrAlreadyFunded is returned when funding a loan that already has a lender
	ErrAlreadyFunded = errors.New("loan already funded")

	// ErrNotFunded is returned when repaying or claiming a loan nobody funded
	ErrNotFunded = errors.New("loan not funded")

	// ErrAlreadyRepaid is returned when the loan was already repaid
	ErrAlreadyRepaid = errors.New("loan already repaid")

	// ErrCollateralClaimed is returned when the lender already seized the collateral
	ErrCollateralClaimed = errors.New("collateral already claimed")

	// ErrNotBorrower is returned when someone other than the borrower repays
	ErrNotBorrower = errors.New("caller is not the borrower")

	// ErrNotLender is returned when someone other than the lender claims collateral
	ErrNotLender = errors.New("caller is not the lender")

	// ErrIncorrectAmount is returned when the attached value does not match the required amount exactly
	ErrIncorrectAmount = errors.New("incorrect amount")

	// ErrNotYetDue is returned when collateral is claimed before the due time
	ErrNotYetDue = errors.New("loan is not yet due")

	// ErrLoanOverdue is returned when repayment arrives at or after the due time
	ErrLoanOverdue = errors.New("loan is overdue")
)

// Ledger and infrastructure errors
var (
	// ErrInsufficientBalance is returned when a principal cannot cover a transfer
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrNegativeAmount is returned when an amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidPrincipal is returned when the caller identity is empty or reserved
	ErrInvalidPrincipal = errors.New("invalid principal")

	// ErrAccountNotFound is returned when the principal has no ledger account
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotAccountOwner is returned when a principal withdraws from someone else's account
	ErrNotAccountOwner = errors.New("caller does not own the account")

	// ErrDuplicateAccount is returned when creating an account that already exists
	ErrDuplicateAccount = errors.New("account already exists")

	// ErrReentrantCall is returned when a registry operation is invoked from inside another one
	ErrReentrantCall = errors.New("reentrant registry call")

	// ErrRegistryClosed is returned when the registry no longer accepts calls
	ErrRegistryClosed = errors.New("registry is closed")

	// ErrDepositsDisabled is returned when the ledger on-ramp is switched off
	ErrDepositsDisabled = errors.New("deposits are disabled")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDuplicateRequest is returned when an idempotency key is reused or still in flight
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrDatabaseConnection is returned when there's a problem talking to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidDuration):
		return CodeInvalidDuration
	case errors.Is(err, ErrIncorrectAmount):
		return CodeIncorrectAmount
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInvalidPrincipal):
		return CodeInvalidPrincipal
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrDepositsDisabled):
		return CodeInvalidRequest
	case errors.Is(err, ErrNotBorrower):
		return CodeNotBorrower
	case errors.Is(err, ErrNotLender):
		return CodeNotLender
	case errors.Is(err, ErrNotAccountOwner):
		return CodeNotAccountOwner
	case errors.Is(err, ErrLoanNotFound):
		return CodeLoanNotFound
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrAlreadyFunded):
		return CodeAlreadyFunded
	case errors.Is(err, ErrNotFunded):
		return CodeNotFunded
	case errors.Is(err, ErrAlreadyRepaid):
		return CodeAlreadyRepaid
	case errors.Is(err, ErrCollateralClaimed):
		return CodeCollateralClaimed
	case errors.Is(err, ErrNotYetDue):
		return CodeNotYetDue
	case errors.Is(err, ErrLoanOverdue):
		return CodeLoanOverdue
	case errors.Is(err, ErrReentrantCall):
		return CodeReentrantCall
	case errors.Is(err, ErrDuplicateRequest):
		return CodeDuplicateRequest
	case errors.Is(err, ErrRegistryClosed):
		return CodeRegistryClosed
	default:
		return CodeInternalServer
	}
}

// IsClientError reports whether err is a rejection caused by the caller's input
// rather than a failure of the service.
func IsClientError(err error) bool {
	code := ErrorCode(err)
	return code >= 4000 && code < 5000
}

// LoanError represents a rejected registry call
type LoanError struct {
	LoanID    uint64
	Operation string
	Caller    string
	Err       error
}

// Error implements the error interface for LoanError
func (e *LoanError) Error() string {
	return fmt.Sprintf("%s rejected for loan %d (caller: %s): %v", e.Operation, e.LoanID, e.Caller, e.Err)
}

// Unwrap returns the underlying error
func (e *LoanError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *LoanError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "loan_error",
		"loan_id":    e.LoanID,
		"operation":  e.Operation,
		"caller":     e.Caller,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewLoanError wraps err with the loan call that produced it
func NewLoanError(operation string, loanID uint64, caller string, err error) error {
	return &LoanError{
		LoanID:    loanID,
		Operation: operation,
		Caller:    caller,
		Err:       err,
	}
}

// InsufficientBalanceError provides detailed error information for insufficient balance
type InsufficientBalanceError struct {
	Principal string
	Amount    string
	Available string
}

// Error implements the error interface
func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: required %s, available %s",
		e.Principal, e.Amount, e.Available)
}

// Is checks if the target error is an ErrInsufficientBalance
func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientBalanceError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "insufficient_balance",
		"principal":  e.Principal,
		"amount":     e.Amount,
		"available":  e.Available,
		"error_code": CodeInsufficientBalance,
	}
}

// NewInsufficientBalanceError creates a new detailed insufficient balance error
func NewInsufficientBalanceError(principal, amount, available string) error {
	return &InsufficientBalanceError{
		Principal: principal,
		Amount:    amount,
		Available: available,
	}
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrAccountNotFound)
}

// IsInsufficientBalanceError checks if the error is related to insufficient balance
func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}
