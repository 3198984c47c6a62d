package messaging

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/messaging"
)

// MockEventPublisher is a mock implementation of messaging.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

var _ messaging.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, events []*entity.LoanEvent) error {
	return m.Called(ctx, events).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}
