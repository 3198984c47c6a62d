package persistence

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// EventRepository stores the loan event log
type EventRepository interface {
	// Append records an event and sets its Sequence
	Append(ctx context.Context, event *entity.LoanEvent) error

	// ListByLoan returns the events of one loan in emission order
	ListByLoan(ctx context.Context, loanID uint64) ([]*entity.LoanEvent, error)
}
