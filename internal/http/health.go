package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything whose connectivity can be checked.
type Pinger interface {
	Ping() error
}

const (
	healthHealthy   = "healthy"
	healthDegraded  = "degraded"
	healthUnhealthy = "unhealthy"
)

// HealthCheck names one dependency. A failing critical check makes the
// service unhealthy (503); any other failure only degrades it.
type HealthCheck struct {
	Name     string
	Pinger   Pinger
	Critical bool
}

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	checks  []HealthCheck
	version string
}

func NewHealthController(version string, checks ...HealthCheck) *HealthController {
	return &HealthController{checks: checks, version: version}
}

func (h *HealthController) Status(c *gin.Context) {
	results := make(map[string]string, len(h.checks))
	status := healthHealthy

	for _, check := range h.checks {
		if check.Pinger == nil {
			results[check.Name] = "not configured"
			continue
		}
		if err := check.Pinger.Ping(); err != nil {
			results[check.Name] = "error: " + err.Error()
			if check.Critical {
				status = healthUnhealthy
			} else if status == healthHealthy {
				status = healthDegraded
			}
			continue
		}
		results[check.Name] = "ok"
	}

	code := http.StatusOK
	if status == healthUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.IndentedJSON(code, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  results,
	})
}

// healthChecks lists what /health pings for cfg. The task queue is optional
// and only degrades the service.
func healthChecks(cfg RouterConfig) []HealthCheck {
	checks := []HealthCheck{{Name: "database", Critical: true}}
	if cfg.Database != nil {
		checks[0].Pinger = cfg.Database
	}
	if p, ok := cfg.TaskQueue.(Pinger); ok {
		checks = append(checks, HealthCheck{Name: "task_queue", Pinger: p})
	}
	return checks
}
