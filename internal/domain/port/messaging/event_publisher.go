package messaging

import (
	"context"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
)

// EventPublisher delivers committed loan events to observers
type EventPublisher interface {
	Publish(ctx context.Context, events []*entity.LoanEvent) error
	Close() error
}
