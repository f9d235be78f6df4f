package engine

import (
	"time"

	"github.com/finpulse/finpulse/internal/model"
)

// BuildOverview derives the system-wide overview from one poll cycle's
// records. It is a pure function: an empty record list yields an all-zero
// overview rather than an error.
//
// The system error rate is the unweighted arithmetic mean of per-service
// error rates. This is a known approximation carried over from the original
// dashboard: a low-traffic service counts as much as a busy one. Do not
// silently switch to request-weighted averaging; the rule thresholds and
// tests are calibrated against the unweighted mean.
func BuildOverview(records []model.ServiceRecord, window time.Duration, now time.Time) model.SystemOverview {
	overview := model.SystemOverview{
		TotalServices: len(records),
		GeneratedAt:   now,
	}
	if len(records) == 0 {
		return overview
	}

	var sumResponse, sumError, sumCPU, sumMemory float64
	for _, r := range records {
		overview.RequestsPerSecond += r.RequestsPerSecond
		overview.ActiveConnections += r.ActiveConnections
		sumResponse += r.ResponseTimeMs
		sumError += r.ErrorRate
		sumCPU += r.CPUPercent
		sumMemory += r.MemoryPercent
		if r.Healthy() {
			overview.HealthyServices++
		}
	}

	n := float64(len(records))
	overview.TotalRequests = overview.RequestsPerSecond * window.Seconds()
	overview.ErrorRate = sumError / n
	overview.AvgResponseTimeMs = sumResponse / n
	overview.AvgCPUPercent = sumCPU / n
	overview.AvgMemoryPercent = sumMemory / n
	overview.HealthScore = float64(overview.HealthyServices) / n

	return overview
}
