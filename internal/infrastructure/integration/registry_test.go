package integration

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	errs "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/ledger"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/callqueue"
	loanuc "github.com/amirhossein-jamali/collateral-loan/internal/domain/usecase/loan"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/database"
	ledgeradapter "github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/ledger"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/time"
	mmsg "github.com/amirhossein-jamali/collateral-loan/mocks/port/messaging"
)

const thirtyDays = int64(30 * 24 * 60 * 60)

var startTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// reentrantTransfer calls back into the registry from inside a transfer
type reentrantTransfer struct {
	ledger.ValueTransfer
	registry *loanuc.Registry
}

func (r *reentrantTransfer) Send(ctx context.Context, to entity.Principal, amount entity.Amount) error {
	if _, err := r.registry.ClaimCollateral(ctx, to, 1); err != nil {
		return err
	}
	return r.ValueTransfer.Send(ctx, to, amount)
}

type registryFixture struct {
	registry  *loanuc.Registry
	db        *database.TestDBManager
	clock     *timeprovider.ManualTimeProvider
	publisher *mmsg.MockEventPublisher
	uow       persistence.UnitOfWork
	transfer  ledger.ValueTransfer
	queue     *callqueue.CallQueue
}

func newRegistryFixture(t *testing.T) *registryFixture {
	t.Helper()

	log := logger.NewNoopLogger()
	clock := timeprovider.NewManualTimeProvider(startTime)
	db := database.NewTestDBManager(t, log, clock)
	db.CreateTestAccount(t, "alice", "1000")
	db.CreateTestAccount(t, "bob", "1000")
	db.CreateTestAccount(t, "carol", "1000")

	uow := db.Manager.CreateUnitOfWork()
	transfer := ledgeradapter.NewCustodyTransfer(uow, clock, log)
	queue := callqueue.NewCallQueue(log, 10)
	t.Cleanup(queue.Shutdown)

	publisher := new(mmsg.MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &registryFixture{
		registry:  loanuc.NewRegistry(uow, transfer, publisher, queue, clock, log),
		db:        db,
		clock:     clock,
		publisher: publisher,
		uow:       uow,
		transfer:  transfer,
		queue:     queue,
	}
}

func (f *registryFixture) request(t *testing.T, borrower entity.Principal, collateral string) *entity.Loan {
	t.Helper()
	loan, err := f.registry.RequestLoan(context.Background(), borrower, usecase.RequestLoanInput{
		InterestRatePercent: 10,
		DurationSeconds:     thirtyDays,
		CollateralAmount:    collateral,
	})
	require.NoError(t, err)
	return loan
}

func (f *registryFixture) fund(t *testing.T, lender entity.Principal, loanID uint64, value string) *entity.Loan {
	t.Helper()
	loan, err := f.registry.FundLoan(context.Background(), lender, loanID, value)
	require.NoError(t, err)
	return loan
}

func (f *registryFixture) eventTypes(t *testing.T, loanID uint64) []entity.LoanEventType {
	t.Helper()
	events, err := f.registry.ListLoanEvents(context.Background(), loanID)
	require.NoError(t, err)

	types := make([]entity.LoanEventType, 0, len(events))
	for _, event := range events {
		types = append(types, event.Type)
	}
	return types
}

func TestRegistry_Lifecycle(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()
	dueAt := startTime.Add(30 * 24 * time.Hour)

	t.Run("Request locks collateral", func(t *testing.T) {
		loan := f.request(t, "alice", "100")

		assert.Equal(t, uint64(1), loan.ID)
		assert.Equal(t, "80", loan.LoanAmount.String())
		assert.True(t, dueAt.Equal(loan.DueAt))
		assert.Nil(t, loan.Lender)
		assert.False(t, loan.IsFunded)

		assert.Equal(t, "900", f.db.Balance(t, "alice"))
		assert.Equal(t, "100", f.db.CustodyBalance(t))

		events, err := f.registry.ListLoanEvents(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		event := events[0]
		assert.Equal(t, entity.EventLoanRequested, event.Type)
		assert.Equal(t, entity.Principal("alice"), event.Principal)
		assert.Nil(t, event.Lender)
		assert.Equal(t, "100", event.CollateralAmount.String())
		assert.Equal(t, "80", event.LoanAmount.String())
		assert.Equal(t, uint64(10), *event.InterestRatePercent)
		assert.True(t, dueAt.Equal(*event.DueAt))
	})

	t.Run("Fund forwards the loan amount", func(t *testing.T) {
		f.clock.Advance(core.Hour)
		loan := f.fund(t, "bob", 1, "80")

		assert.True(t, loan.IsFunded)
		require.NotNil(t, loan.Lender)
		assert.Equal(t, entity.Principal("bob"), *loan.Lender)

		assert.Equal(t, "920", f.db.Balance(t, "bob"))
		assert.Equal(t, "980", f.db.Balance(t, "alice"))
		assert.Equal(t, "100", f.db.CustodyBalance(t))
	})

	t.Run("Repay settles and releases collateral", func(t *testing.T) {
		loan, err := f.registry.RepayLoan(ctx, "alice", 1, "88")
		require.NoError(t, err)
		assert.True(t, loan.IsRepaid)
		assert.Equal(t, entity.LoanStatusRepaid, loan.Status())

		assert.Equal(t, "992", f.db.Balance(t, "alice"))
		assert.Equal(t, "1008", f.db.Balance(t, "bob"))
		assert.Equal(t, "0", f.db.CustodyBalance(t))
	})

	t.Run("Events are ordered", func(t *testing.T) {
		assert.Equal(t, []entity.LoanEventType{
			entity.EventLoanRequested,
			entity.EventLoanFunded,
			entity.EventLoanRepaid,
		}, f.eventTypes(t, 1))
	})

	t.Run("Repaid loan stays final", func(t *testing.T) {
		_, err := f.registry.RepayLoan(ctx, "alice", 1, "88")
		assert.ErrorIs(t, err, errs.ErrAlreadyRepaid)

		f.clock.Advance(core.Seconds(thirtyDays))
		_, err = f.registry.ClaimCollateral(ctx, "bob", 1)
		assert.ErrorIs(t, err, errs.ErrAlreadyRepaid)
	})
}

func TestRegistry_ClaimAfterDeadline(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")
	f.fund(t, "bob", 1, "80")

	_, err := f.registry.ClaimCollateral(ctx, "bob", 1)
	assert.ErrorIs(t, err, errs.ErrNotYetDue)

	f.clock.Advance(core.Seconds(thirtyDays) + core.Second)

	_, err = f.registry.RepayLoan(ctx, "alice", 1, "88")
	assert.ErrorIs(t, err, errs.ErrLoanOverdue)

	loan, err := f.registry.ClaimCollateral(ctx, "bob", 1)
	require.NoError(t, err)
	assert.True(t, loan.IsClaimed)
	assert.False(t, loan.IsRepaid)

	assert.Equal(t, "1020", f.db.Balance(t, "bob"))
	assert.Equal(t, "980", f.db.Balance(t, "alice"))
	assert.Equal(t, "0", f.db.CustodyBalance(t))

	_, err = f.registry.ClaimCollateral(ctx, "bob", 1)
	assert.ErrorIs(t, err, errs.ErrCollateralClaimed)

	// claimed loans remain queryable
	stored, err := f.registry.GetLoan(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.LoanStatusClaimed, stored.Status())
	assert.Equal(t, []entity.LoanEventType{
		entity.EventLoanRequested,
		entity.EventLoanFunded,
		entity.EventCollateralClaimed,
	}, f.eventTypes(t, 1))
}

func TestRegistry_DeadlineBoundary(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")
	f.fund(t, "bob", 1, "80")

	f.clock.Set(startTime.Add(30*24*time.Hour - time.Second))
	_, err := f.registry.ClaimCollateral(ctx, "bob", 1)
	assert.ErrorIs(t, err, errs.ErrNotYetDue)

	f.clock.Set(startTime.Add(30 * 24 * time.Hour))
	_, err = f.registry.RepayLoan(ctx, "alice", 1, "88")
	assert.ErrorIs(t, err, errs.ErrLoanOverdue)

	_, err = f.registry.ClaimCollateral(ctx, "bob", 1)
	assert.NoError(t, err)
}

func TestRegistry_UnknownLoan(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	_, err := f.registry.FundLoan(ctx, "bob", 999, "80")
	assert.ErrorIs(t, err, errs.ErrLoanNotFound)

	_, err = f.registry.RepayLoan(ctx, "alice", 999, "88")
	assert.ErrorIs(t, err, errs.ErrLoanNotFound)

	_, err = f.registry.ClaimCollateral(ctx, "bob", 999)
	assert.ErrorIs(t, err, errs.ErrLoanNotFound)

	_, err = f.registry.GetLoan(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrLoanNotFound)

	_, err = f.registry.ListLoanEvents(ctx, 999)
	assert.ErrorIs(t, err, errs.ErrLoanNotFound)

	var loanErr *errs.LoanError
	_, err = f.registry.ClaimCollateral(ctx, "bob", 999)
	require.ErrorAs(t, err, &loanErr)
	assert.Equal(t, loanuc.OpClaimCollateral, loanErr.Operation)
	assert.Equal(t, uint64(999), loanErr.LoanID)
	assert.Equal(t, "bob", loanErr.Caller)
}

func TestRegistry_RequestRejections(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	testCases := []struct {
		name     string
		input    usecase.RequestLoanInput
		expected error
	}{
		{"Malformed collateral", usecase.RequestLoanInput{InterestRatePercent: 10, DurationSeconds: 60, CollateralAmount: "abc"}, errs.ErrInvalidAmount},
		{"Zero collateral", usecase.RequestLoanInput{InterestRatePercent: 10, DurationSeconds: 60, CollateralAmount: "0"}, errs.ErrInvalidAmount},
		{"Collateral too small for a loan", usecase.RequestLoanInput{InterestRatePercent: 10, DurationSeconds: 60, CollateralAmount: "1"}, errs.ErrInvalidAmount},
		{"Zero duration", usecase.RequestLoanInput{InterestRatePercent: 10, DurationSeconds: 0, CollateralAmount: "100"}, errs.ErrInvalidDuration},
		{"Uncovered collateral", usecase.RequestLoanInput{InterestRatePercent: 10, DurationSeconds: 60, CollateralAmount: "1001"}, errs.ErrInsufficientBalance},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.registry.RequestLoan(ctx, "alice", tc.input)
			assert.ErrorIs(t, err, tc.expected)
		})
	}

	assert.Equal(t, int64(0), f.db.CountRows(t, "loans"))
	assert.Equal(t, int64(0), f.db.CountRows(t, "loan_events"))
	assert.Equal(t, "1000", f.db.Balance(t, "alice"))
	assert.Equal(t, "0", f.db.CustodyBalance(t))

	// a rejected request does not consume an id
	loan := f.request(t, "alice", "100")
	assert.Equal(t, uint64(1), loan.ID)
}

func TestRegistry_InterestRateAboveInt64(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()
	rate := uint64(math.MaxInt64) + 1

	created, err := f.registry.RequestLoan(ctx, "alice", usecase.RequestLoanInput{
		InterestRatePercent: rate,
		DurationSeconds:     60,
		CollateralAmount:    "100",
	})
	require.NoError(t, err)
	assert.Equal(t, rate, created.InterestRatePercent)

	stored, err := f.registry.GetLoan(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, rate, stored.InterestRatePercent)
	assert.Equal(t, "7378697629483820726", stored.RepaymentAmount().String())

	events, err := f.registry.ListLoanEvents(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].InterestRatePercent)
	assert.Equal(t, rate, *events[0].InterestRatePercent)
}

func TestRegistry_FundRejections(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")

	_, err := f.registry.FundLoan(ctx, "bob", 1, "79")
	assert.ErrorIs(t, err, errs.ErrIncorrectAmount)

	_, err = f.registry.FundLoan(ctx, "bob", 1, "81")
	assert.ErrorIs(t, err, errs.ErrIncorrectAmount)

	_, err = f.registry.FundLoan(ctx, "bob", 1, "-80")
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)

	f.db.CreateTestAccount(t, "dave", "10")
	_, err = f.registry.FundLoan(ctx, "dave", 1, "80")
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	loan, err := f.registry.GetLoan(ctx, 1)
	require.NoError(t, err)
	assert.False(t, loan.IsFunded)
	assert.Nil(t, loan.Lender)
	assert.Equal(t, "10", f.db.Balance(t, "dave"))
	assert.Equal(t, "900", f.db.Balance(t, "alice"))

	f.fund(t, "bob", 1, "80")

	// already funded is reported before the amount check
	_, err = f.registry.FundLoan(ctx, "carol", 1, "1")
	assert.ErrorIs(t, err, errs.ErrAlreadyFunded)

	assert.Equal(t, []entity.LoanEventType{
		entity.EventLoanRequested,
		entity.EventLoanFunded,
	}, f.eventTypes(t, 1))
}

func TestRegistry_RepayRejections(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")

	_, err := f.registry.RepayLoan(ctx, "alice", 1, "88")
	assert.ErrorIs(t, err, errs.ErrNotFunded)

	f.fund(t, "bob", 1, "80")

	_, err = f.registry.RepayLoan(ctx, "carol", 1, "88")
	assert.ErrorIs(t, err, errs.ErrNotBorrower)

	_, err = f.registry.RepayLoan(ctx, "alice", 1, "80")
	assert.ErrorIs(t, err, errs.ErrIncorrectAmount)

	_, err = f.registry.RepayLoan(ctx, "alice", 1, "89")
	assert.ErrorIs(t, err, errs.ErrIncorrectAmount)

	loan, err := f.registry.GetLoan(ctx, 1)
	require.NoError(t, err)
	assert.False(t, loan.IsRepaid)
	assert.Equal(t, "100", f.db.CustodyBalance(t))

	// a borrower who cannot cover the repayment leaves flags and balances as they were
	f2 := newRegistryFixture(t)
	f2.db.CreateTestAccount(t, "erin", "100")
	f2.request(t, "erin", "100")
	f2.fund(t, "bob", 1, "80")

	_, err = f2.registry.RepayLoan(ctx, "erin", 1, "88")
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)

	loan, err = f2.registry.GetLoan(ctx, 1)
	require.NoError(t, err)
	assert.False(t, loan.IsRepaid)
	assert.Equal(t, "80", f2.db.Balance(t, "erin"))
	assert.Equal(t, "920", f2.db.Balance(t, "bob"))
	assert.Equal(t, "100", f2.db.CustodyBalance(t))
	assert.Equal(t, []entity.LoanEventType{
		entity.EventLoanRequested,
		entity.EventLoanFunded,
	}, f2.eventTypes(t, 1))
}

func TestRegistry_ClaimRejections(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")

	_, err := f.registry.ClaimCollateral(ctx, "bob", 1)
	assert.ErrorIs(t, err, errs.ErrNotFunded)

	f.fund(t, "bob", 1, "80")

	_, err = f.registry.ClaimCollateral(ctx, "carol", 1)
	assert.ErrorIs(t, err, errs.ErrNotLender)

	// lender check precedes the deadline check
	f.clock.Advance(core.Seconds(thirtyDays))
	_, err = f.registry.ClaimCollateral(ctx, "alice", 1)
	assert.ErrorIs(t, err, errs.ErrNotLender)

	assert.Equal(t, "100", f.db.CustodyBalance(t))
}

func TestRegistry_SelfFunding(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")
	loan := f.fund(t, "alice", 1, "80")
	require.NotNil(t, loan.Lender)
	assert.Equal(t, entity.Principal("alice"), *loan.Lender)

	_, err := f.registry.RepayLoan(ctx, "alice", 1, "88")
	require.NoError(t, err)
	assert.Equal(t, "1000", f.db.Balance(t, "alice"))
	assert.Equal(t, "0", f.db.CustodyBalance(t))
}

func TestRegistry_SequentialIDs(t *testing.T) {
	f := newRegistryFixture(t)

	for i := 1; i <= 5; i++ {
		loan := f.request(t, "carol", "10")
		assert.Equal(t, uint64(i), loan.ID)
		assert.Equal(t, "8", loan.LoanAmount.String())
	}
	assert.Equal(t, "50", f.db.CustodyBalance(t))
}

func TestRegistry_ReentrantTransferIsRejected(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")

	malicious := &reentrantTransfer{ValueTransfer: f.transfer}
	registry := loanuc.NewRegistry(f.uow, malicious, nil, f.queue, f.clock, logger.NewNoopLogger())
	malicious.registry = registry

	_, err := registry.FundLoan(ctx, "bob", 1, "80")
	assert.ErrorIs(t, err, errs.ErrReentrantCall)

	loan, err := registry.GetLoan(ctx, 1)
	require.NoError(t, err)
	assert.False(t, loan.IsFunded)
	assert.Equal(t, "1000", f.db.Balance(t, "bob"))
	assert.Equal(t, "900", f.db.Balance(t, "alice"))
	assert.Equal(t, "100", f.db.CustodyBalance(t))
	assert.Equal(t, []entity.LoanEventType{entity.EventLoanRequested}, f.eventTypes(t, 1))
}

func TestRegistry_PublishesCommittedEvents(t *testing.T) {
	log := logger.NewNoopLogger()
	clock := timeprovider.NewManualTimeProvider(startTime)
	db := database.NewTestDBManager(t, log, clock)
	db.CreateTestAccount(t, "alice", "1000")

	uow := db.Manager.CreateUnitOfWork()
	queue := callqueue.NewCallQueue(log, 10)
	defer queue.Shutdown()

	t.Run("Publisher receives the stored events", func(t *testing.T) {
		publisher := new(mmsg.MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []*entity.LoanEvent) bool {
			return len(events) == 1 &&
				events[0].Type == entity.EventLoanRequested &&
				events[0].Sequence > 0
		})).Return(nil).Once()

		registry := loanuc.NewRegistry(uow, ledgeradapter.NewCustodyTransfer(uow, clock, log), publisher, queue, clock, log)
		_, err := registry.RequestLoan(context.Background(), "alice", usecase.RequestLoanInput{
			InterestRatePercent: 5,
			DurationSeconds:     60,
			CollateralAmount:    "10",
		})
		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("Publish failure does not undo the call", func(t *testing.T) {
		publisher := new(mmsg.MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		registry := loanuc.NewRegistry(uow, ledgeradapter.NewCustodyTransfer(uow, clock, log), publisher, queue, clock, log)
		loan, err := registry.RequestLoan(context.Background(), "alice", usecase.RequestLoanInput{
			InterestRatePercent: 5,
			DurationSeconds:     60,
			CollateralAmount:    "10",
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), loan.ID)
		publisher.AssertExpectations(t)
	})

	t.Run("Rejected calls publish nothing", func(t *testing.T) {
		publisher := new(mmsg.MockEventPublisher)

		registry := loanuc.NewRegistry(uow, ledgeradapter.NewCustodyTransfer(uow, clock, log), publisher, queue, clock, log)
		_, err := registry.FundLoan(context.Background(), "alice", 1, "1")
		assert.ErrorIs(t, err, errs.ErrIncorrectAmount)
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}

func TestRegistry_ListLoans(t *testing.T) {
	f := newRegistryFixture(t)
	ctx := context.Background()

	f.request(t, "alice", "100")
	f.request(t, "alice", "50")
	f.request(t, "carol", "10")
	f.fund(t, "bob", 2, "40")

	all, err := f.registry.ListLoans(ctx, persistence.LoanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(1), all[0].ID)
	assert.Equal(t, uint64(3), all[2].ID)

	alice := entity.Principal("alice")
	byBorrower, err := f.registry.ListLoans(ctx, persistence.LoanFilter{Borrower: &alice})
	require.NoError(t, err)
	assert.Len(t, byBorrower, 2)

	bob := entity.Principal("bob")
	byLender, err := f.registry.ListLoans(ctx, persistence.LoanFilter{Lender: &bob})
	require.NoError(t, err)
	require.Len(t, byLender, 1)
	assert.Equal(t, uint64(2), byLender[0].ID)

	requested := entity.LoanStatusRequested
	open, err := f.registry.ListLoans(ctx, persistence.LoanFilter{Status: &requested})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	paged, err := f.registry.ListLoans(ctx, persistence.LoanFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, uint64(2), paged[0].ID)

	// out of range paging falls back to defaults
	clamped, err := f.registry.ListLoans(ctx, persistence.LoanFilter{Offset: -4, Limit: loanuc.MaxListLimit + 1})
	require.NoError(t, err)
	assert.Len(t, clamped, 3)
}

func TestRegistry_ClosedQueue(t *testing.T) {
	f := newRegistryFixture(t)
	f.queue.Shutdown()

	_, err := f.registry.RequestLoan(context.Background(), "alice", usecase.RequestLoanInput{
		InterestRatePercent: 10,
		DurationSeconds:     60,
		CollateralAmount:    "100",
	})
	assert.ErrorIs(t, err, errs.ErrRegistryClosed)
	assert.Equal(t, "1000", f.db.Balance(t, "alice"))
}
