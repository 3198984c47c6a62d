package loan

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// MaxListLimit caps a single listing page
const MaxListLimit = 500

// GetLoan returns a loan record
func (r *Registry) GetLoan(ctx context.Context, loanID uint64) (*entity.Loan, error) {
	loan, err := r.uow.GetLoanRepository(ctx).GetByID(ctx, loanID)
	if err != nil {
		if !errors.Is(err, errs.ErrLoanNotFound) {
			r.logger.Error("Failed to get loan", map[string]any{
				"loan_id": loanID,
				"error":   err.Error(),
			})
		}
		return nil, err
	}
	return loan, nil
}

// ListLoans returns loans matching filter ordered by id
func (r *Registry) ListLoans(ctx context.Context, filter persistence.LoanFilter) ([]*entity.Loan, error) {
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Limit <= 0 || filter.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}

	loans, err := r.uow.GetLoanRepository(ctx).List(ctx, filter)
	if err != nil {
		r.logger.Error("Failed to list loans", map[string]any{
			"error": err.Error(),
		})
		return nil, err
	}
	return loans, nil
}

// ListLoanEvents returns the event log of one loan in emission order
func (r *Registry) ListLoanEvents(ctx context.Context, loanID uint64) ([]*entity.LoanEvent, error) {
	if _, err := r.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	events, err := r.uow.GetEventRepository(ctx).ListByLoan(ctx, loanID)
	if err != nil {
		r.logger.Error("Failed to list loan events", map[string]any{
			"loan_id": loanID,
			"error":   err.Error(),
		})
		return nil, err
	}
	return events, nil
}
