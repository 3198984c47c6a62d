package persistence

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
)

// MockAccountRepository is a mock implementation of persistence.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

var _ persistence.AccountRepository = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) GetByPrincipal(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) GetForUpdate(ctx context.Context, principal entity.Principal) (*entity.Account, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *MockAccountRepository) Update(ctx context.Context, account *entity.Account) error {
	return m.Called(ctx, account).Error(0)
}
