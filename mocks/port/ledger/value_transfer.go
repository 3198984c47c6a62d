package ledger

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/ledger"
)

// MockValueTransfer is a mock implementation of ledger.ValueTransfer
type MockValueTransfer struct {
	mock.Mock
}

var _ ledger.ValueTransfer = (*MockValueTransfer)(nil)

func (m *MockValueTransfer) Receive(ctx context.Context, from entity.Principal, amount entity.Amount) error {
	return m.Called(ctx, from, amount).Error(0)
}

func (m *MockValueTransfer) Send(ctx context.Context, to entity.Principal, amount entity.Amount) error {
	return m.Called(ctx, to, amount).Error(0)
}
