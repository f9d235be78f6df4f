package model

import "time"

// SystemOverview holds the system-wide numbers derived from the current set
// of service records. It is recomputed from scratch every poll cycle and
// never mutated in place.
type SystemOverview struct {
	TotalRequests     float64   `json:"total_requests"`
	RequestsPerSecond float64   `json:"requests_per_second"`
	ActiveConnections int       `json:"active_connections"`
	ErrorRate         float64   `json:"error_rate"`
	AvgResponseTimeMs float64   `json:"avg_response_time_ms"`
	AvgCPUPercent     float64   `json:"avg_cpu_percent"`
	AvgMemoryPercent  float64   `json:"avg_memory_percent"`
	HealthyServices   int       `json:"healthy_services"`
	TotalServices     int       `json:"total_services"`
	HealthScore       float64   `json:"health_score"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// MetricSample is one timestamped scalar in a named series.
type MetricSample struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Tracked series names fed by the aggregator and the host probe.
const (
	SeriesRequestRate  = "requestRate"
	SeriesResponseTime = "responseTime"
	SeriesErrorRate    = "errorRate"
	SeriesCPUUsage     = "cpuUsage"
	SeriesMemoryUsage  = "memoryUsage"
	SeriesHostCPU      = "hostCpu"
	SeriesHostMemory   = "hostMemory"
)
