package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/entity"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/logger"
	mmsg "github.com/amirhossein-jamali/collateral-loan/mocks/port/messaging"
)

func sampleEvents(t *testing.T) []*entity.LoanEvent {
	t.Helper()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	collateral, err := entity.ParseAmount("100")
	require.NoError(t, err)

	loan, err := entity.NewLoan(7, "alice", collateral, 10, 3600, now)
	require.NoError(t, err)
	requested := entity.NewLoanRequestedEvent(loan)
	requested.Sequence = 1

	require.NoError(t, loan.Fund("bob", loan.LoanAmount, now.Add(time.Minute)))
	funded := entity.NewLoanFundedEvent(loan, now.Add(time.Minute))
	funded.Sequence = 2

	return []*entity.LoanEvent{requested, funded}
}

func TestRedisPublisher(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "loan-events")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	messages := sub.Channel()

	publisher := NewRedisPublisher(client, "loan-events", logger.NewNoopLogger())
	require.NoError(t, publisher.Publish(ctx, sampleEvents(t)))

	var received []map[string]any
	for len(received) < 2 {
		select {
		case msg := <-messages:
			var payload map[string]any
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
			received = append(received, payload)
		case <-ctx.Done():
			t.Fatalf("timed out waiting for events, got %d", len(received))
		}
	}

	assert.Equal(t, "LoanRequested", received[0]["type"])
	assert.Equal(t, float64(7), received[0]["loanId"])
	assert.Equal(t, "alice", received[0]["principal"])
	assert.Nil(t, received[0]["lender"])
	assert.Equal(t, "100", received[0]["collateralAmount"])
	assert.Equal(t, "80", received[0]["loanAmount"])
	assert.Equal(t, float64(10), received[0]["interestRatePercent"])
	assert.Equal(t, "2024-01-01T01:00:00Z", received[0]["dueAt"])

	assert.Equal(t, "LoanFunded", received[1]["type"])
	assert.Equal(t, "bob", received[1]["principal"])
	assert.Equal(t, "bob", received[1]["lender"])
	assert.Equal(t, "80", received[1]["amount"])

	assert.NoError(t, publisher.Publish(ctx, nil))
}

func TestRedisPublisher_ServerDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: s.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s.Close()

	publisher := NewRedisPublisher(client, "loan-events", logger.NewNoopLogger())
	assert.Error(t, publisher.Publish(context.Background(), sampleEvents(t)))
}

func TestRedisPublisher_PipelineError(t *testing.T) {
	client, rmock := redismock.NewClientMock()
	events := sampleEvents(t)

	first, err := json.Marshal(events[0])
	require.NoError(t, err)
	second, err := json.Marshal(events[1])
	require.NoError(t, err)

	rmock.ExpectPublish("loan-events", first).SetVal(1)
	rmock.ExpectPublish("loan-events", second).SetErr(errors.New("READONLY You can't write against a read only replica"))

	publisher := NewRedisPublisher(client, "loan-events", logger.NewNoopLogger())
	err = publisher.Publish(context.Background(), events)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to loan-events")
	assert.Contains(t, err.Error(), "READONLY")
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestLogPublisher(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	publisher := NewLogPublisher(logger.NewZapLoggerFrom(zap.New(core), zap.NewAtomicLevelAt(zapcore.InfoLevel)))

	require.NoError(t, publisher.Publish(context.Background(), sampleEvents(t)))

	entries := logs.FilterMessage("Loan event").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "LoanRequested", entries[0].ContextMap()["event"])
	assert.Equal(t, "100", entries[0].ContextMap()["collateral_amount"])
	assert.Equal(t, "bob", entries[1].ContextMap()["lender"])
	assert.NoError(t, publisher.Close())
}

func TestMultiPublisher(t *testing.T) {
	events := sampleEvents(t)
	ctx := context.Background()

	failing := new(mmsg.MockEventPublisher)
	failing.On("Publish", ctx, events).Return(errors.New("broker down"))
	failing.On("Close").Return(nil)

	working := new(mmsg.MockEventPublisher)
	working.On("Publish", ctx, events).Return(nil)
	working.On("Close").Return(errors.New("close failed"))

	multi := NewMultiPublisher(failing, nil, working)
	assert.Equal(t, 2, multi.Len())

	err := multi.Publish(ctx, events)
	assert.EqualError(t, err, "broker down")
	working.AssertCalled(t, "Publish", ctx, events)

	assert.EqualError(t, multi.Close(), "close failed")
	failing.AssertExpectations(t)
	working.AssertExpectations(t)
}
