package model

import "time"

// ServiceStatus represents the reported health of a polled service
type ServiceStatus string

const (
	ServiceStatusHealthy ServiceStatus = "healthy"
	ServiceStatusWarning ServiceStatus = "warning"
	ServiceStatusError   ServiceStatus = "error"
)

// ServiceRecord is the normalized result of one health poll of one service.
// Records are immutable after creation and replaced wholesale every poll cycle.
type ServiceRecord struct {
	Name              string        `json:"name"`
	URL               string        `json:"url"`
	Status            ServiceStatus `json:"status"`
	Uptime            float64       `json:"uptime"`
	ResponseTimeMs    float64       `json:"response_time_ms"`
	ErrorRate         float64       `json:"error_rate"`
	CPUPercent        float64       `json:"cpu_percent"`
	MemoryPercent     float64       `json:"memory_percent"`
	RequestsPerSecond float64       `json:"requests_per_second"`
	ActiveConnections int           `json:"active_connections"`
	PolledAt          time.Time     `json:"polled_at"`
}

// Healthy reports whether the record carries a healthy status.
func (r ServiceRecord) Healthy() bool {
	return r.Status == ServiceStatusHealthy
}

// HealthPayload mirrors the JSON body returned by a service's GET /health
// endpoint. Every field is optional; absent fields take the zero value and
// the poller applies its own defaults.
type HealthPayload struct {
	Status       string         `json:"status"`
	Uptime       float64        `json:"uptime"`
	ResponseTime float64        `json:"responseTime"`
	ErrorRate    float64        `json:"errorRate"`
	Metrics      *HealthMetrics `json:"metrics"`
}

// HealthMetrics is the optional metrics block of a health payload.
type HealthMetrics struct {
	CPU               float64 `json:"cpu"`
	Memory            float64 `json:"memory"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	ActiveConnections int     `json:"active_connections"`
}
