package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
)

// Account is a principal's ledger balance in base units
type Account struct {
	Principal     Principal // Owner of the balance
	balance       Amount    // Never negative (private)
	CreatedAt     time.Time // When the account was opened
	UpdatedAt     time.Time // When the balance last changed
	TransferCount uint64    // Number of credits and debits applied
}

// NewAccount opens an account with the given initial balance
func NewAccount(principal Principal, initialBalance Amount, timeProvider coreport.TimeProvider) (*Account, error) {
	if len(principal) == 0 {
		return nil, errs.ErrInvalidPrincipal
	}
	if initialBalance.IsNegative() {
		return nil, errs.ErrNegativeAmount
	}
	if !initialBalance.IsInteger() {
		return nil, fmt.Errorf("%w: fractional base units are not allowed", errs.ErrInvalidAmount)
	}

	now := timeProvider.Now().UTC()
	return &Account{
		Principal: principal,
		balance:   initialBalance,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// RestoreAccount rebuilds an account from stored state (for repositories)
func RestoreAccount(principal Principal, balance Amount, createdAt, updatedAt time.Time, transferCount uint64) *Account {
	return &Account{
		Principal:     principal,
		balance:       balance,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		TransferCount: transferCount,
	}
}

// Balance returns the current balance
func (a *Account) Balance() Amount {
	return a.balance
}

// CanDebit checks if the account covers the amount
func (a *Account) CanDebit(amount Amount) bool {
	return a.balance.GreaterThanOrEqual(amount)
}

// Credit adds a positive amount to the balance
func (a *Account) Credit(amount Amount, now time.Time) error {
	if err := validateTransferAmount(amount); err != nil {
		return err
	}

	a.balance = a.balance.Add(amount)
	a.UpdatedAt = now
	a.TransferCount++
	return nil
}

// Debit subtracts a positive amount from the balance.
// Returns an InsufficientBalanceError if the balance cannot cover it.
func (a *Account) Debit(amount Amount, now time.Time) error {
	if err := validateTransferAmount(amount); err != nil {
		return err
	}

	if !a.CanDebit(amount) {
		return errs.NewInsufficientBalanceError(a.Principal.String(), FormatAmount(amount), FormatAmount(a.balance))
	}

	a.balance = a.balance.Sub(amount)
	a.UpdatedAt = now
	a.TransferCount++
	return nil
}

func validateTransferAmount(amount Amount) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: %w", errs.ErrInvalidAmount, errs.ErrNegativeAmount)
	}
	if !amount.IsPositive() || !amount.IsInteger() {
		return fmt.Errorf("%w: transfer amount must be a positive integer", errs.ErrInvalidAmount)
	}
	return nil
}
