package account

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
)

// GetBalance retrieves a principal's balance in the standardized format
func (u *AccountUseCase) GetBalance(ctx context.Context, principal entity.Principal) (*usecase.AccountBalanceResponse, error) {
	account, err := u.uow.GetAccountRepository(ctx).GetByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, errs.ErrAccountNotFound) {
			u.logger.Warn("Balance requested for unknown account", map[string]any{
				"principal": principal.String(),
			})
		} else {
			u.logger.Error("Failed to get account", map[string]any{
				"principal": principal.String(),
				"error":     err.Error(),
			})
		}
		return nil, err
	}

	response := u.toResponse(account)

	u.logger.Debug("Account balance retrieved", map[string]any{
		"principal": response.Principal,
		"balance":   response.Balance,
	})

	return response, nil
}
