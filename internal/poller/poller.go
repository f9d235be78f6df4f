package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/model"
)

// Poller fetches health payloads for a static list of configured services
// and normalizes them into service records. One poll cycle attempts every
// service; a single service's failure never aborts the others.
type Poller struct {
	logger     *zap.Logger
	services   []config.ServiceEntry
	httpClient *http.Client
}

// New creates a poller over the configured services. The timeout bounds each
// individual health fetch.
func New(services []config.ServiceEntry, timeout time.Duration, logger *zap.Logger) *Poller {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Poller{
		logger:   logger.Named("poller"),
		services: services,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PollAll polls every configured service once and returns a complete
// replacement list of records, in configuration order. Failed polls yield
// degraded records rather than errors.
func (p *Poller) PollAll(ctx context.Context) []model.ServiceRecord {
	records := make([]model.ServiceRecord, 0, len(p.services))
	for _, svc := range p.services {
		records = append(records, p.poll(ctx, svc))
	}
	return records
}

// poll fetches one service's health endpoint and normalizes the result.
func (p *Poller) poll(ctx context.Context, svc config.ServiceEntry) model.ServiceRecord {
	start := time.Now()

	payload, err := p.fetch(ctx, svc.URL)
	if err != nil {
		p.logger.Warn("Health poll failed",
			zap.String("service", svc.Name),
			zap.String("url", svc.URL),
			zap.Error(err))
		return degradedRecord(svc, start)
	}

	return normalize(svc, payload, time.Since(start), start)
}

// fetch performs the bounded HTTP GET and decodes the health payload.
func (p *Poller) fetch(ctx context.Context, url string) (*model.HealthPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var payload model.HealthPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return &payload, nil
}

// normalize maps a health payload onto a service record, applying defaults
// for absent fields. The reported response time falls back to the measured
// round trip when the payload omits it.
func normalize(svc config.ServiceEntry, payload *model.HealthPayload, elapsed time.Duration, polledAt time.Time) model.ServiceRecord {
	record := model.ServiceRecord{
		Name:           svc.Name,
		URL:            svc.URL,
		Status:         statusFromPayload(payload.Status),
		Uptime:         payload.Uptime,
		ResponseTimeMs: payload.ResponseTime,
		ErrorRate:      payload.ErrorRate,
		PolledAt:       polledAt,
	}
	if record.ResponseTimeMs == 0 {
		record.ResponseTimeMs = float64(elapsed.Milliseconds())
	}
	if m := payload.Metrics; m != nil {
		record.CPUPercent = m.CPU
		record.MemoryPercent = m.Memory
		record.RequestsPerSecond = m.RequestsPerSecond
		record.ActiveConnections = m.ActiveConnections
	}
	return record
}

// statusFromPayload maps the payload's status string onto the closed status
// set, defaulting to healthy when absent or unrecognized.
func statusFromPayload(s string) model.ServiceStatus {
	switch model.ServiceStatus(s) {
	case model.ServiceStatusWarning:
		return model.ServiceStatusWarning
	case model.ServiceStatusError:
		return model.ServiceStatusError
	default:
		return model.ServiceStatusHealthy
	}
}

// degradedRecord is the record produced when a poll fails: error status,
// full error rate, zeroed throughput metrics.
func degradedRecord(svc config.ServiceEntry, polledAt time.Time) model.ServiceRecord {
	return model.ServiceRecord{
		Name:      svc.Name,
		URL:       svc.URL,
		Status:    model.ServiceStatusError,
		ErrorRate: 1.0,
		PolledAt:  polledAt,
	}
}
