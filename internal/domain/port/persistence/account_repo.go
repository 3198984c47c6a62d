package persistence

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// AccountRepository defines essential methods to interact with ledger accounts
type AccountRepository interface {
	// GetByPrincipal retrieves an account
	//
	// Possible errors:
	// - ErrAccountNotFound: If the principal has no account
	// - ErrDatabaseConnection: If database connection fails
	GetByPrincipal(ctx context.Context, principal entity.Principal) (*entity.Account, error)

	// GetForUpdate retrieves an account and locks its row until the surrounding
	// transaction ends (where the database supports row locks)
	//
	// Possible errors:
	// - ErrAccountNotFound: If the principal has no account
	// - ErrDatabaseConnection: If database connection fails
	GetForUpdate(ctx context.Context, principal entity.Principal) (*entity.Account, error)

	// Create opens a new account
	//
	// Possible errors:
	// - ErrDuplicateAccount: If the principal already has an account
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, account *entity.Account) error

	// Update stores the balance and counters of an existing account
	//
	// Possible errors:
	// - ErrAccountNotFound: If the account doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	Update(ctx context.Context, account *entity.Account) error
}
