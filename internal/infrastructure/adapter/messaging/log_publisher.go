package messaging

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
)

// LogPublisher writes every loan event to the structured log
type LogPublisher struct {
	logger coreport.Logger
}

// NewLogPublisher creates a publisher backed by logger
func NewLogPublisher(logger coreport.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

var _ messaging.EventPublisher = (*LogPublisher)(nil)

// Publish logs the events at info level
func (p *LogPublisher) Publish(_ context.Context, events []*entity.LoanEvent) error {
	for _, event := range events {
		fields := map[string]any{
			"event":     string(event.Type),
			"sequence":  event.Sequence,
			"loan_id":   event.LoanID,
			"principal": event.Principal.String(),
			"timestamp": event.Timestamp,
		}
		if event.Lender != nil {
			fields["lender"] = event.Lender.String()
		}
		if event.CollateralAmount != nil {
			fields["collateral_amount"] = entity.FormatAmount(*event.CollateralAmount)
		}
		if event.LoanAmount != nil {
			fields["loan_amount"] = entity.FormatAmount(*event.LoanAmount)
		}
		if event.InterestRatePercent != nil {
			fields["interest_rate_percent"] = *event.InterestRatePercent
		}
		if event.DueAt != nil {
			fields["due_at"] = *event.DueAt
		}
		if event.Amount != nil {
			fields["amount"] = entity.FormatAmount(*event.Amount)
		}

		p.logger.Info("Loan event", fields)
	}
	return nil
}

// Close implements messaging.EventPublisher
func (p *LogPublisher) Close() error {
	return nil
}
