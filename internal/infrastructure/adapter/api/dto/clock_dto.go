package dto

import "time"

// AdvanceClockRequest moves the manual clock forward
type AdvanceClockRequest struct {
	Seconds int64 `json:"seconds" binding:"required,min=1"`
}

// ClockResponse reports the registry time
type ClockResponse struct {
	Now time.Time `json:"now"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status   string     `json:"status"`
	Database string     `json:"database"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// PoolStats is the last sampled database connection pool usage
type PoolStats struct {
	Open         int    `json:"open"`
	InUse        int    `json:"inUse"`
	Idle         int    `json:"idle"`
	MaxOpen      int    `json:"maxOpen"`
	WaitCount    int64  `json:"waitCount"`
	WaitDuration string `json:"waitDuration"`
}
