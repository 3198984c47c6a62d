package handler

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	domainerr "github.com/amirhossein-jamali/collateral-loan/internal/domain/error"
	coreport "github.com/amirhossein-jamali/collateral-loan/internal/domain/port/core"
	"github.com/amirhossein-jamali/collateral-loan/internal/infrastructure/adapter/api/dto"
)

// DatabaseHealth reports database reachability and connection pool usage
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	PoolStats() (sql.DBStats, bool)
}

// SystemHandler serves the clock and health endpoints
type SystemHandler struct {
	clock  coreport.TimeProvider
	db     DatabaseHealth
	logger coreport.Logger
}

// NewSystemHandler creates a new system handler instance
func NewSystemHandler(clock coreport.TimeProvider, db DatabaseHealth, logger coreport.Logger) *SystemHandler {
	return &SystemHandler{
		clock:  clock,
		db:     db,
		logger: logger,
	}
}

// Now handles the GET /clock endpoint
func (h *SystemHandler) Now(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ClockResponse{Now: h.clock.Now().UTC()})
}

// AdvanceClock handles the POST /clock/advance endpoint.
// Only a manual clock can be moved; the real clock answers 409.
func (h *SystemHandler) AdvanceClock(c *gin.Context) {
	adjustable, ok := h.clock.(coreport.AdjustableClock)
	if !ok {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "clock is not adjustable",
		})
		return
	}

	var req dto.AdvanceClockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format: "+err.Error())
		return
	}

	now := adjustable.Advance(coreport.Seconds(req.Seconds))
	h.logger.Info("Clock advanced", map[string]any{
		"seconds": req.Seconds,
		"now":     now.UTC(),
	})

	c.JSON(http.StatusOK, dto.ClockResponse{Now: now.UTC()})
}

// Health handles the GET /health endpoint
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("Health check failed", map[string]any{
			"error": err.Error(),
		})
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{
			Status:   "unavailable",
			Database: "down",
		})
		return
	}

	resp := dto.HealthResponse{
		Status:   "ok",
		Database: "up",
	}
	if stats, ok := h.db.PoolStats(); ok {
		resp.Pool = &dto.PoolStats{
			Open:         stats.OpenConnections,
			InUse:        stats.InUse,
			Idle:         stats.Idle,
			MaxOpen:      stats.MaxOpenConnections,
			WaitCount:    stats.WaitCount,
			WaitDuration: stats.WaitDuration.String(),
		}
	}
	c.JSON(http.StatusOK, resp)
}
