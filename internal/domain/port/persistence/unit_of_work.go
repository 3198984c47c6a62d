package persistence

import (
	"context"
)

// UnitOfWork defines an interface for coordinating transaction operations
// across multiple repositories to maintain data consistency
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// WithinTransaction runs fn inside one transaction. The transaction is
	// committed when fn returns nil and rolled back otherwise. Transient
	// database failures restart fn from scratch.
	WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error

	// GetLoanRepository returns a loan repository bound to the current transaction
	GetLoanRepository(ctx context.Context) LoanRepository

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetEventRepository returns an event repository bound to the current transaction
	GetEventRepository(ctx context.Context) EventRepository
}
