package account

import (
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/callqueue"
)

// Options tunes ledger behaviour
type Options struct {
	UnitDecimals  int32 // decimals between a whole unit and a base unit
	AllowDeposits bool  // enables the external on-ramp
}

// AccountUseCase implements ledger account operations
type AccountUseCase struct {
	uow          persistence.UnitOfWork
	queue        *callqueue.CallQueue
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	options      Options
}

// NewAccountUseCase creates a new account use case instance.
// Mutations share the registry's call queue so balances never change under a running loan call.
func NewAccountUseCase(
	uow persistence.UnitOfWork,
	queue *callqueue.CallQueue,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	options Options,
) *AccountUseCase {
	return &AccountUseCase{
		uow:          uow,
		queue:        queue,
		timeProvider: timeProvider,
		logger:       logger,
		options:      options,
	}
}

var _ usecase.AccountUseCase = (*AccountUseCase)(nil)

func (u *AccountUseCase) now() time.Time {
	return u.timeProvider.Now().UTC().Truncate(time.Second)
}

// toResponse formats an account for callers
func (u *AccountUseCase) toResponse(account *entity.Account) *usecase.AccountBalanceResponse {
	return &usecase.AccountBalanceResponse{
		Principal:     account.Principal.String(),
		Balance:       entity.FormatAmount(account.Balance()),
		BalanceUnits:  entity.FormatUnits(account.Balance(), u.options.UnitDecimals),
		TransferCount: account.TransferCount,
	}
}
