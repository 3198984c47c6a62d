package core

import (
	"context"
	"time"
)

// Duration is a domain-specific wrapper around time.Duration
type Duration time.Duration

// Common duration constants
const (
	Nanosecond  Duration = Duration(time.Nanosecond)
	Millisecond          = Duration(time.Millisecond)
	Second               = Duration(time.Second)
	Minute               = Duration(time.Minute)
	Hour                 = Duration(time.Hour)
	Day                  = 24 * Hour
)

// Std converts domain Duration to time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Seconds converts a whole number of seconds into a Duration
func Seconds(n int64) Duration {
	return Duration(n) * Second
}

// TimeProvider abstracts time operations for the domain.
// The registry reads Now once per call and uses that reading for every
// timestamp and deadline comparison of the call.
type TimeProvider interface {
	Now() time.Time
	Since(t time.Time) Duration
	Until(t time.Time) Duration
	Sleep(d Duration)
	WithTimeout(ctx context.Context, timeout Duration) (context.Context, context.CancelFunc)
	ParseDuration(s string) (Duration, error)
}

// AdjustableClock is a TimeProvider whose time only moves when told to
type AdjustableClock interface {
	TimeProvider
	// Advance moves the clock forward by d and returns the new time
	Advance(d Duration) time.Time
	// Set jumps the clock to t
	Set(t time.Time)
}
