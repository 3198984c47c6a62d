package database

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/logger"
	timeprovider "github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/time"
)

func TestPoolMonitor_Sample(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := logger.NewZapLoggerFrom(zap.New(core), zap.NewAtomicLevelAt(zapcore.WarnLevel))

	samples := []sql.DBStats{
		{MaxOpenConnections: 5, OpenConnections: 5, InUse: 5, WaitCount: 2},
		{MaxOpenConnections: 5, OpenConnections: 5, InUse: 5, WaitCount: 2},
		{MaxOpenConnections: 5, OpenConnections: 5, InUse: 5, WaitCount: 4},
		{MaxOpenConnections: 5, OpenConnections: 5, InUse: 1, WaitCount: 9},
	}
	next := 0
	monitor := NewPoolMonitor(func() (sql.DBStats, error) {
		s := samples[next]
		next++
		return s, nil
	}, log)

	_, ok := monitor.Latest()
	assert.False(t, ok)

	for range samples {
		require.NoError(t, monitor.Sample())
	}

	latest, ok := monitor.Latest()
	require.True(t, ok)
	assert.Equal(t, int64(9), latest.WaitCount)

	// only the busy sample with new waits is reported
	entries := logs.FilterMessage("Database connection pool saturated").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["new_waits"])
}

func TestPoolMonitor_SourceError(t *testing.T) {
	monitor := NewPoolMonitor(func() (sql.DBStats, error) {
		return sql.DBStats{}, errors.New("closed")
	}, logger.NewNoopLogger())

	assert.Error(t, monitor.Start(time.Hour))
	_, ok := monitor.Latest()
	assert.False(t, ok)
}

func TestManager_PoolStats(t *testing.T) {
	clock := timeprovider.NewManualTimeProvider(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	db := NewTestDBManager(t, logger.NewNoopLogger(), clock)

	stats, ok := db.Manager.PoolStats()
	require.True(t, ok)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}
