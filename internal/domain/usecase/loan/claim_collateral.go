package loan

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// ClaimCollateral releases the collateral of an unpaid loan to its lender once
// the deadline has been reached
func (r *Registry) ClaimCollateral(ctx context.Context, caller entity.Principal, loanID uint64) (*entity.Loan, error) {
	var claimed *entity.Loan
	err := r.execute(ctx, OpClaimCollateral, loanID, caller, func(txCtx context.Context, now time.Time) ([]*entity.LoanEvent, error) {
		loanRepo := r.uow.GetLoanRepository(txCtx)

		loan, err := loanRepo.GetByID(txCtx, loanID)
		if err != nil {
			return nil, err
		}

		if err := loan.Claim(caller, now); err != nil {
			return nil, err
		}

		if err := loanRepo.Update(txCtx, loan); err != nil {
			return nil, err
		}

		if err := r.transfer.Send(txCtx, *loan.Lender, loan.CollateralAmount); err != nil {
			return nil, err
		}

		claimed = loan
		return []*entity.LoanEvent{entity.NewCollateralClaimedEvent(loan, now)}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Collateral claimed", map[string]any{
		"loan_id":    claimed.ID,
		"lender":     claimed.LenderString(),
		"collateral": entity.FormatAmount(claimed.CollateralAmount),
	})

	return claimed, nil
}
