package database

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
)

// poolBusyRatio is the share of open connections in use above which waiting callers are reported
const poolBusyRatio = 0.8

// PoolMonitor samples the sql connection pool behind the gorm handle and
// keeps the latest snapshot for the health endpoint
type PoolMonitor struct {
	stats    func() (sql.DBStats, error)
	logger   coreport.Logger
	latest   sql.DBStats
	sampled  bool
	mutex    sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPoolMonitor creates a monitor reading stats from source
func NewPoolMonitor(source func() (sql.DBStats, error), logger coreport.Logger) *PoolMonitor {
	return &PoolMonitor{
		stats:    source,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start takes a first sample and then samples every interval until Stop
func (m *PoolMonitor) Start(interval time.Duration) error {
	if err := m.Sample(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Sample(); err != nil {
					m.logger.Error("Failed to sample connection pool", map[string]any{
						"error": err.Error(),
					})
				}
			case <-m.stopChan:
				return
			}
		}
	}()

	return nil
}

// Stop ends background sampling; safe to call more than once
func (m *PoolMonitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

// Latest returns the most recent sample and whether one was taken
func (m *PoolMonitor) Latest() (sql.DBStats, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.latest, m.sampled
}

// Sample reads the pool stats now. Callers that had to wait for a connection
// since the previous sample while the pool was busy are reported.
func (m *PoolMonitor) Sample() error {
	stats, err := m.stats()
	if err != nil {
		return fmt.Errorf("failed to read connection pool stats: %w", err)
	}

	m.mutex.Lock()
	previous, hadPrevious := m.latest, m.sampled
	m.latest, m.sampled = stats, true
	m.mutex.Unlock()

	// a pool of one is always busy during a call, so waits are the signal
	busy := float64(stats.InUse) > float64(stats.MaxOpenConnections)*poolBusyRatio
	if busy && hadPrevious && stats.WaitCount > previous.WaitCount {
		m.logger.Warn("Database connection pool saturated", map[string]any{
			"in_use":     stats.InUse,
			"max_open":   stats.MaxOpenConnections,
			"idle":       stats.Idle,
			"new_waits":  stats.WaitCount - previous.WaitCount,
			"wait_total": stats.WaitDuration.String(),
		})
	}

	return nil
}
