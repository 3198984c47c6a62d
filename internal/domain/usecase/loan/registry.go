package loan

import (
	"context"
	"errors"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/ledger"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/callqueue"
)

// Operation names used in errors, logs and the call queue
const (
	OpRequestLoan     = "requestLoan"
	OpFundLoan        = "fundLoan"
	OpRepayLoan       = "repayLoan"
	OpClaimCollateral = "claimCollateral"
)

// Registry owns the loan records and runs every state transition as one
// serialized, transactional call
type Registry struct {
	uow          persistence.UnitOfWork
	transfer     ledger.ValueTransfer
	publisher    messaging.EventPublisher
	queue        *callqueue.CallQueue
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// transitionFunc performs one transition inside the call transaction and
// returns the events it emitted
type transitionFunc func(txCtx context.Context, now time.Time) ([]*entity.LoanEvent, error)

// NewRegistry creates the loan registry. publisher may be nil.
func NewRegistry(
	uow persistence.UnitOfWork,
	transfer ledger.ValueTransfer,
	publisher messaging.EventPublisher,
	queue *callqueue.CallQueue,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Registry {
	return &Registry{
		uow:          uow,
		transfer:     transfer,
		publisher:    publisher,
		queue:        queue,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

var _ usecase.LoanUseCase = (*Registry)(nil)

// now reads the clock once for a call; ledger timestamps have second resolution
func (r *Registry) now() time.Time {
	return r.timeProvider.Now().UTC().Truncate(time.Second)
}

// execute runs fn as one serialized call inside one database transaction,
// appends the emitted events to the event log in that transaction and
// publishes them once committed
func (r *Registry) execute(ctx context.Context, op string, loanID uint64, caller entity.Principal, fn transitionFunc) error {
	var events []*entity.LoanEvent

	err := r.queue.Submit(ctx, op, func(callCtx context.Context) error {
		now := r.now()
		return r.uow.WithinTransaction(callCtx, func(txCtx context.Context) error {
			emitted, err := fn(txCtx, now)
			if err != nil {
				return err
			}

			eventRepo := r.uow.GetEventRepository(txCtx)
			for _, event := range emitted {
				if err := eventRepo.Append(txCtx, event); err != nil {
					return err
				}
			}
			events = emitted
			return nil
		})
	})
	if err != nil {
		return r.reject(op, loanID, caller, err)
	}

	r.publish(ctx, events)
	return nil
}

// reject wraps a failed call and logs it at a level matching its cause
func (r *Registry) reject(op string, loanID uint64, caller entity.Principal, err error) error {
	loanErr := errs.NewLoanError(op, loanID, caller.String(), err)

	var fields map[string]any
	var fielder coreport.LogFielder
	if errors.As(loanErr, &fielder) {
		fields = fielder.LogFields()
	}

	if errs.IsClientError(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.logger.Warn("Loan call rejected", fields)
	} else {
		r.logger.Error("Loan call failed", fields)
	}
	return loanErr
}

// publish hands committed events to the publisher; failures never undo the call
func (r *Registry) publish(ctx context.Context, events []*entity.LoanEvent) {
	for _, event := range events {
		r.logger.Debug("Loan event emitted", map[string]any{
			"type":      string(event.Type),
			"loan_id":   event.LoanID,
			"principal": event.Principal.String(),
			"sequence":  event.Sequence,
		})
	}

	if r.publisher == nil || len(events) == 0 {
		return
	}

	if err := r.publisher.Publish(context.WithoutCancel(ctx), events); err != nil {
		r.logger.Warn("Failed to publish loan events", map[string]any{
			"error":   err.Error(),
			"count":   len(events),
			"loan_id": events[0].LoanID,
		})
	}
}
