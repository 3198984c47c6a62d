package loan

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// RepayLoan settles a funded loan before its deadline. The repayment goes to
// the lender and the collateral returns to the borrower. The repaid flag is
// stored before either outbound transfer runs.
func (r *Registry) RepayLoan(ctx context.Context, caller entity.Principal, loanID uint64, value string) (*entity.Loan, error) {
	amount, err := entity.ParseAmount(value)
	if err != nil {
		return nil, r.reject(OpRepayLoan, loanID, caller, err)
	}

	var repaid *entity.Loan
	err = r.execute(ctx, OpRepayLoan, loanID, caller, func(txCtx context.Context, now time.Time) ([]*entity.LoanEvent, error) {
		loanRepo := r.uow.GetLoanRepository(txCtx)

		loan, err := loanRepo.GetByID(txCtx, loanID)
		if err != nil {
			return nil, err
		}

		if err := loan.Repay(caller, amount, now); err != nil {
			return nil, err
		}

		if err := loanRepo.Update(txCtx, loan); err != nil {
			return nil, err
		}

		if err := r.transfer.Receive(txCtx, caller, amount); err != nil {
			return nil, err
		}
		if err := r.transfer.Send(txCtx, *loan.Lender, amount); err != nil {
			return nil, err
		}
		if err := r.transfer.Send(txCtx, loan.Borrower, loan.CollateralAmount); err != nil {
			return nil, err
		}

		repaid = loan
		return []*entity.LoanEvent{entity.NewLoanRepaidEvent(loan, now)}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loan repaid", map[string]any{
		"loan_id":    repaid.ID,
		"borrower":   repaid.Borrower.String(),
		"lender":     repaid.LenderString(),
		"repayment":  entity.FormatAmount(amount),
		"collateral": entity.FormatAmount(repaid.CollateralAmount),
	})

	return repaid, nil
}
