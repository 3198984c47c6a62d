package messaging

import (
	"context"
	"errors"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
)

// MultiPublisher hands events to every publisher; one failing does not stop the others
type MultiPublisher struct {
	publishers []messaging.EventPublisher
}

// NewMultiPublisher combines publishers, skipping nil entries
func NewMultiPublisher(publishers ...messaging.EventPublisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

var _ messaging.EventPublisher = (*MultiPublisher)(nil)

// Len returns the number of wrapped publishers
func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}

// Publish fans out the events and joins the failures
func (m *MultiPublisher) Publish(ctx context.Context, events []*entity.LoanEvent) error {
	var errList []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, events); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// Close closes every publisher
func (m *MultiPublisher) Close() error {
	var errList []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
