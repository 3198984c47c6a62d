package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/ledger"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// CustodyTransfer moves value between principal accounts and the registry
// custody account. It runs on the account repository of the transaction in
// ctx, so a failed call undoes every movement.
type CustodyTransfer struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewCustodyTransfer creates a ledger-backed value transfer
func NewCustodyTransfer(uow persistence.UnitOfWork, timeProvider coreport.TimeProvider, logger coreport.Logger) *CustodyTransfer {
	return &CustodyTransfer{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ ledger.ValueTransfer = (*CustodyTransfer)(nil)

// Receive debits from and credits custody
func (t *CustodyTransfer) Receive(ctx context.Context, from entity.Principal, amount entity.Amount) error {
	if err := t.move(ctx, from, entity.CustodyPrincipal, amount); err != nil {
		return err
	}

	t.logger.Debug("Value received into custody", map[string]any{
		"from":   from.String(),
		"amount": entity.FormatAmount(amount),
	})
	return nil
}

// Send debits custody and credits to, opening its account if needed
func (t *CustodyTransfer) Send(ctx context.Context, to entity.Principal, amount entity.Amount) error {
	if err := t.move(ctx, entity.CustodyPrincipal, to, amount); err != nil {
		return err
	}

	t.logger.Debug("Value sent from custody", map[string]any{
		"to":     to.String(),
		"amount": entity.FormatAmount(amount),
	})
	return nil
}

// move debits the source before touching the destination
func (t *CustodyTransfer) move(ctx context.Context, from, to entity.Principal, amount entity.Amount) error {
	now := t.timeProvider.Now().UTC().Truncate(time.Second)
	accounts := t.uow.GetAccountRepository(ctx)

	source, err := accounts.GetForUpdate(ctx, from)
	if errors.Is(err, errs.ErrAccountNotFound) {
		return errs.NewInsufficientBalanceError(from.String(), entity.FormatAmount(amount), "0")
	}
	if err != nil {
		return err
	}

	if err := source.Debit(amount, now); err != nil {
		return err
	}

	if err := accounts.Update(ctx, source); err != nil {
		return err
	}

	destination, err := accounts.GetForUpdate(ctx, to)
	if errors.Is(err, errs.ErrAccountNotFound) {
		destination, err = entity.NewAccount(to, entity.ZeroAmount, t.timeProvider)
		if err != nil {
			return err
		}
		destination.CreatedAt = now
		if err := destination.Credit(amount, now); err != nil {
			return err
		}
		return accounts.Create(ctx, destination)
	}
	if err != nil {
		return err
	}

	if err := destination.Credit(amount, now); err != nil {
		return err
	}
	return accounts.Update(ctx, destination)
}
