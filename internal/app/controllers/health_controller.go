package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/educareway/internal/app/models/dto"
)

// Pinger reports database reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness probes
type HealthController struct {
	db     Pinger
	logger zerolog.Logger
}

// NewHealthController creates a new HealthController. db may be nil.
func NewHealthController(db Pinger, logger zerolog.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// Health reports service and database status
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service is healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "Database unavailable"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	status := dto.HealthResponse{Status: "OK", Database: "up"}
	code := http.StatusOK

	if c.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.db.Ping(pingCtx); err != nil {
			c.logger.Error().Err(err).Msg("Database health check failed")
			status = dto.HealthResponse{Status: "DEGRADED", Database: "down"}
			code = http.StatusServiceUnavailable
		}
	}

	ctx.JSON(code, dto.APIResponse{
		Success:   code == http.StatusOK,
		Data:      status,
		Timestamp: time.Now(),
	})
}

// Ping answers the bare liveness probe
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong"})
}
