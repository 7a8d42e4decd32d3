package httpapi

import "github.com/vietddude/catalog/internal/infra/api"

// SystemStatus represents the health state reported by /health.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// degradedErrorRate is the upstream error rate above which we report degraded.
const degradedErrorRate = 0.1

// Evaluate derives the service status from the upstream API health.
func Evaluate(h api.HealthStatus) SystemStatus {
	if !h.Available {
		return StatusCritical
	}
	if h.ErrorRate > degradedErrorRate {
		return StatusDegraded
	}
	return StatusHealthy
}
