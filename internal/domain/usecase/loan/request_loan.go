package loan

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
)

// RequestLoan locks the attached collateral in custody and creates a loan
// offering 80% of it. The new loan has no lender and the next sequential id.
func (r *Registry) RequestLoan(ctx context.Context, caller entity.Principal, input usecase.RequestLoanInput) (*entity.Loan, error) {
	collateral, err := entity.ParseAmount(input.CollateralAmount)
	if err != nil {
		return nil, r.reject(OpRequestLoan, 0, caller, err)
	}

	var created *entity.Loan
	err = r.execute(ctx, OpRequestLoan, 0, caller, func(txCtx context.Context, now time.Time) ([]*entity.LoanEvent, error) {
		loanRepo := r.uow.GetLoanRepository(txCtx)

		id, err := loanRepo.NextID(txCtx)
		if err != nil {
			return nil, err
		}

		loan, err := entity.NewLoan(id, caller, collateral, input.InterestRatePercent, input.DurationSeconds, now)
		if err != nil {
			return nil, err
		}

		if err := loanRepo.Create(txCtx, loan); err != nil {
			return nil, err
		}

		if err := r.transfer.Receive(txCtx, caller, collateral); err != nil {
			return nil, err
		}

		created = loan
		return []*entity.LoanEvent{entity.NewLoanRequestedEvent(loan)}, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Loan requested", map[string]any{
		"loan_id":       created.ID,
		"borrower":      created.Borrower.String(),
		"collateral":    entity.FormatAmount(created.CollateralAmount),
		"loan_amount":   entity.FormatAmount(created.LoanAmount),
		"interest_rate": created.InterestRatePercent,
		"due_at":        created.DueAt,
	})

	return created, nil
}
