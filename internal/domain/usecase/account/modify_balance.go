package account

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
)

// Deposit credits a principal from outside the ledger, opening the account on first use
func (u *AccountUseCase) Deposit(ctx context.Context, principal entity.Principal, amount string) (*usecase.AccountBalanceResponse, error) {
	if !u.options.AllowDeposits {
		return nil, errs.ErrDepositsDisabled
	}

	value, err := entity.ParsePositiveAmount(amount)
	if err != nil {
		return nil, err
	}

	var updated *entity.Account
	err = u.queue.Submit(ctx, "deposit", func(callCtx context.Context) error {
		now := u.now()
		return u.uow.WithinTransaction(callCtx, func(txCtx context.Context) error {
			accountRepo := u.uow.GetAccountRepository(txCtx)

			account, err := accountRepo.GetForUpdate(txCtx, principal)
			if errors.Is(err, errs.ErrAccountNotFound) {
				account, err = entity.NewAccount(principal, entity.ZeroAmount, u.timeProvider)
				if err != nil {
					return err
				}
				account.CreatedAt = now
				if err := account.Credit(value, now); err != nil {
					return err
				}
				updated = account
				return accountRepo.Create(txCtx, account)
			}
			if err != nil {
				return err
			}

			if err := account.Credit(value, now); err != nil {
				return err
			}
			updated = account
			return accountRepo.Update(txCtx, account)
		})
	})
	if err != nil {
		u.logger.Error("Deposit failed", map[string]any{
			"principal": principal.String(),
			"amount":    amount,
			"error":     err.Error(),
		})
		return nil, err
	}

	u.logger.Info("Deposit applied", map[string]any{
		"principal":  principal.String(),
		"amount":     entity.FormatAmount(value),
		"newBalance": entity.FormatAmount(updated.Balance()),
	})

	return u.toResponse(updated), nil
}

// Withdraw debits the caller's own balance; the value leaves the ledger
func (u *AccountUseCase) Withdraw(ctx context.Context, caller entity.Principal, principal entity.Principal, amount string) (*usecase.AccountBalanceResponse, error) {
	if caller != principal {
		return nil, errs.ErrNotAccountOwner
	}

	value, err := entity.ParsePositiveAmount(amount)
	if err != nil {
		return nil, err
	}

	var updated *entity.Account
	err = u.queue.Submit(ctx, "withdraw", func(callCtx context.Context) error {
		now := u.now()
		return u.uow.WithinTransaction(callCtx, func(txCtx context.Context) error {
			accountRepo := u.uow.GetAccountRepository(txCtx)

			account, err := accountRepo.GetForUpdate(txCtx, principal)
			if errors.Is(err, errs.ErrAccountNotFound) {
				return errs.NewInsufficientBalanceError(principal.String(), entity.FormatAmount(value), "0")
			}
			if err != nil {
				return err
			}

			if err := account.Debit(value, now); err != nil {
				return err
			}
			updated = account
			return accountRepo.Update(txCtx, account)
		})
	})
	if err != nil {
		if errs.IsClientError(err) {
			u.logger.Warn("Withdrawal rejected", map[string]any{
				"principal": principal.String(),
				"amount":    amount,
				"error":     err.Error(),
			})
		} else {
			u.logger.Error("Withdrawal failed", map[string]any{
				"principal": principal.String(),
				"amount":    amount,
				"error":     err.Error(),
			})
		}
		return nil, err
	}

	u.logger.Info("Withdrawal applied", map[string]any{
		"principal":  principal.String(),
		"amount":     entity.FormatAmount(value),
		"newBalance": entity.FormatAmount(updated.Balance()),
	})

	return u.toResponse(updated), nil
}
