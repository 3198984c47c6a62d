package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// MockEventRepository is a mock implementation of persistence.EventRepository
type MockEventRepository struct {
	mock.Mock
}

var _ persistence.EventRepository = (*MockEventRepository)(nil)

func (m *MockEventRepository) Append(ctx context.Context, event *entity.LoanEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepository) ListByLoan(ctx context.Context, loanID uint64) ([]*entity.LoanEvent, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LoanEvent), args.Error(1)
}
