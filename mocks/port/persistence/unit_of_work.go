package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// MockUnitOfWork is a mock implementation of persistence.UnitOfWork.
// WithinTransaction runs fn with the caller's context unless the expectation
// returns an error, in which case fn is skipped and the error returned.
type MockUnitOfWork struct {
	mock.Mock
}

var _ persistence.UnitOfWork = (*MockUnitOfWork)(nil)

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUnitOfWork) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	if err := m.Called(ctx, fn).Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

func (m *MockUnitOfWork) GetLoanRepository(ctx context.Context) persistence.LoanRepository {
	return m.Called(ctx).Get(0).(persistence.LoanRepository)
}

func (m *MockUnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return m.Called(ctx).Get(0).(persistence.AccountRepository)
}

func (m *MockUnitOfWork) GetEventRepository(ctx context.Context) persistence.EventRepository {
	return m.Called(ctx).Get(0).(persistence.EventRepository)
}
