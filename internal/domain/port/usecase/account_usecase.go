package usecase

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// AccountBalanceResponse represents the standardized balance response
type AccountBalanceResponse struct {
	Principal     string `json:"principal"`
	Balance       string `json:"balance"`       // Base units
	BalanceUnits  string `json:"balanceUnits"`  // Whole units using the configured decimals
	TransferCount uint64 `json:"transferCount"` // Credits and debits applied
}

// AccountUseCase defines ledger account operations
type AccountUseCase interface {
	// GetBalance returns the principal's balance
	GetBalance(ctx context.Context, principal entity.Principal) (*AccountBalanceResponse, error)

	// Deposit credits the principal from outside the ledger, opening the account if needed
	Deposit(ctx context.Context, principal entity.Principal, amount string) (*AccountBalanceResponse, error)

	// Withdraw debits the principal's own balance
	Withdraw(ctx context.Context, caller entity.Principal, principal entity.Principal, amount string) (*AccountBalanceResponse, error)

	// SeedAccounts opens the configured accounts that do not exist yet
	SeedAccounts(ctx context.Context, balances map[string]string) error
}
