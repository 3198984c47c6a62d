package loan

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// FundLoan makes caller the lender of an unfunded loan. The attached value
// must equal the loan amount and is forwarded to the borrower.
func (r *Registry) FundLoan(ctx context.Context, caller entity.Principal, loanID uint64, value string) (*entity.Loan, error) {
	amount, err := entity.ParseAmount(value)
	if err != nil {
		return nil, r.reject(OpFundLoan, loanID, caller, err)
	}

	var funded *entity.Loan
	err = r.execute(ctx, OpFundLoan, loanID, caller, func(txCtx context.Context, now time.Time) ([]*entity.LoanEvent, error) {
		loanRepo := r.uow.GetLoanRepository(txCtx)

		loan, err := loanRepo.GetByID(txCtx, loanID)
		if err != nil {
			return nil, err
		}

		if err := loan.Fund(caller, amount, now); err != nil {
			return nil, err
		}

		if err := loanRepo.Update(txCtx, loan); err != nil {
			return nil, err
		}

		if err := r.transfer.Receive(txCtx, caller, amount); err != nil {
			return nil, err
		}
		if err := r.transfer.Send(txCtx, loan.Borrower, amount); err != nil {
			return nil, err
		}

		funded = loan
		return []*entity.LoanEvent{entity.NewLoanFundedEvent(loan, now)}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loan funded", map[string]any{
		"loan_id":  funded.ID,
		"lender":   funded.LenderString(),
		"borrower": funded.Borrower.String(),
		"amount":   entity.FormatAmount(funded.LoanAmount),
	})

	return funded, nil
}
