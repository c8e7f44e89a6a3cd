package handler

import (
	"context"
	"runtime"
	"time"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which case
// readiness only reports the process is up.
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
		timeout:   2 * time.Second,
	}
}

// HealthResponse is returned by /health and /ready
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database,omitempty"`
}

func (h *SystemHandler) info(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
}

// Health reports that the process is serving requests
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, h.info("ok"))
}

// Ready reports whether the database answers
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := h.info("ok")
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			h.Error(c, dto.ErrCodeUnavailable, "Database is not reachable")
			return
		}
		resp.Database = "ok"
	}
	h.Success(c, resp)
}
