package handlers

import (
	"context"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LoadReporter exposes matchmaking load.
type LoadReporter interface {
	Rooms() int
	Waiting() int
}

const (
	checkHealthy   = "healthy"
	checkUnhealthy = "unhealthy"
	checkDisabled  = "disabled"
)

type HealthHandler struct {
	version string
	started time.Time
	load    LoadReporter
	deps    map[string]Pinger // nil value: not configured
}

// NewHealthHandler reports a nil dependency as disabled rather than failing.
func NewHealthHandler(version string, load LoadReporter, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		version: version,
		started: time.Now(),
		load:    load,
		deps:    deps,
	}
}

type LoadInfo struct {
	Rooms    int     `json:"rooms"`
	Waiting  int     `json:"waiting"`
	MemoryMB float64 `json:"memory_mb"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    string            `json:"uptime,omitempty"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
	Load      *LoadInfo         `json:"load,omitempty"`
}

// Liveness only says the process is up.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// pingAll checks dependencies in name order and returns the names that failed.
func (h *HealthHandler) pingAll(ctx context.Context) (map[string]string, []string) {
	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	var failed []string
	for _, name := range names {
		dep := h.deps[name]
		if dep == nil {
			checks[name] = checkDisabled
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			checks[name] = checkUnhealthy
			failed = append(failed, name)
			continue
		}
		checks[name] = checkHealthy
	}
	return checks, failed
}

// Readiness reports every dependency plus current load.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks, failed := h.pingAll(ctx)

	resp := HealthResponse{
		Status:    checkHealthy,
		Version:   h.version,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
	if h.load != nil {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		resp.Load = &LoadInfo{
			Rooms:    h.load.Rooms(),
			Waiting:  h.load.Waiting(),
			MemoryMB: float64(m.Alloc) / (1 << 20),
		}
	}

	code := http.StatusOK
	if len(failed) > 0 {
		resp.Status = checkUnhealthy
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}

// Health is the short form of Readiness.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if _, failed := h.pingAll(ctx); len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": checkUnhealthy, "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}
