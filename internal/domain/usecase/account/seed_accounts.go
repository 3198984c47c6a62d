package account

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
)

// SeedAccounts opens the configured accounts with balances given in whole
// units. Existing accounts are left untouched so restarts are harmless.
func (u *AccountUseCase) SeedAccounts(ctx context.Context, balances map[string]string) error {
	principals := make([]string, 0, len(balances))
	for p := range balances {
		principals = append(principals, p)
	}
	sort.Strings(principals)

	return u.queue.Submit(ctx, "seedAccounts", func(callCtx context.Context) error {
		return u.uow.WithinTransaction(callCtx, func(txCtx context.Context) error {
			accountRepo := u.uow.GetAccountRepository(txCtx)

			for _, raw := range principals {
				principal, err := entity.ParsePrincipal(raw)
				if err != nil {
					return err
				}

				amount, err := entity.ParseUnits(balances[raw], u.options.UnitDecimals)
				if err != nil {
					return fmt.Errorf("seed balance for %s: %w", raw, err)
				}

				_, err = accountRepo.GetByPrincipal(txCtx, principal)
				if err == nil {
					u.logger.Debug("Seed account already exists", map[string]any{
						"principal": principal.String(),
					})
					continue
				}
				if !errors.Is(err, errs.ErrAccountNotFound) {
					return err
				}

				account, err := entity.NewAccount(principal, amount, u.timeProvider)
				if err != nil {
					return err
				}
				if err := accountRepo.Create(txCtx, account); err != nil {
					return err
				}

				u.logger.Info("Seed account created", map[string]any{
					"principal": principal.String(),
					"balance":   entity.FormatAmount(amount),
				})
			}
			return nil
		})
	})
}
