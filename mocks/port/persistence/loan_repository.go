package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// MockLoanRepository is a mock implementation of persistence.LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

var _ persistence.LoanRepository = (*MockLoanRepository)(nil)

func (m *MockLoanRepository) NextID(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *entity.Loan) error {
	return m.Called(ctx, loan).Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uint64) (*entity.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Loan), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context, filter persistence.LoanFilter) ([]*entity.Loan, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Loan), args.Error(1)
}
