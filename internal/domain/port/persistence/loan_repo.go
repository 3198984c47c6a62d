package persistence

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// LoanFilter narrows a loan listing; nil fields match everything
type LoanFilter struct {
	Borrower *entity.Principal
	Lender   *entity.Principal
	Status   *entity.LoanStatus
	Offset   int
	Limit    int
}

// LoanRepository defines essential methods to interact with loan records
type LoanRepository interface {
	// NextID returns the identifier the next created loan must use.
	// Identifiers start at 1 and never skip, so this must run inside the
	// same transaction as Create.
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	NextID(ctx context.Context) (uint64, error)

	// Create stores a new loan
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails or the id is taken
	Create(ctx context.Context, loan *entity.Loan) error

	// Update persists the lender, flags and timestamps of an existing loan
	//
	// Possible errors:
	// - ErrLoanNotFound: If the loan doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, loan *entity.Loan) error

	// GetByID retrieves a loan by identifier
	//
	// Possible errors:
	// - ErrLoanNotFound: If the loan doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.Loan, error)

	// List returns loans matching the filter ordered by id
	//
	// Possible errors:
	// - ErrDatabaseConnection: If database connection fails
	List(ctx context.Context, filter LoanFilter) ([]*entity.Loan, error)
}
