package time

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
)

// ManualTimeProvider is a clock that only moves through Advance or Set.
// It lets operators and tests walk a loan past its deadline without waiting.
type ManualTimeProvider struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManualTimeProvider creates a manual clock starting at start
func NewManualTimeProvider(start time.Time) *ManualTimeProvider {
	return &ManualTimeProvider{now: start.UTC()}
}

// Now returns the current manual time
func (p *ManualTimeProvider) Now() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.now
}

// Advance moves the clock forward; negative durations are ignored
func (p *ManualTimeProvider) Advance(d core.Duration) time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d > 0 {
		p.now = p.now.Add(d.Std())
	}
	return p.now
}

// Set jumps the clock to t
func (p *ManualTimeProvider) Set(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = t.UTC()
}

func (p *ManualTimeProvider) Since(t time.Time) core.Duration {
	return core.Duration(p.Now().Sub(t))
}

func (p *ManualTimeProvider) Until(t time.Time) core.Duration {
	return core.Duration(t.Sub(p.Now()))
}

// Sleep advances the clock instead of blocking
func (p *ManualTimeProvider) Sleep(d core.Duration) {
	p.Advance(d)
}

// WithTimeout uses the real clock for the deadline since manual time never elapses on its own
func (p *ManualTimeProvider) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

func (p *ManualTimeProvider) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}

var _ core.AdjustableClock = (*ManualTimeProvider)(nil)
