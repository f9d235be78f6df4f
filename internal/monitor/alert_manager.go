package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/model"
)

// Publisher fans alert lifecycle events out to an external channel.
type Publisher interface {
	Publish(event model.AlertEvent) error
}

// Archiver appends alert lifecycle events to an audit store.
type Archiver interface {
	Store(ctx context.Context, event model.AlertEvent) error
}

// AlertManager owns the alert set. It creates alerts from per-service
// threshold checks, deduplicates on the (service, kind) pair, resolves
// alerts automatically when their condition clears, and bounds the stored
// set at a configured capacity.
//
// Capacity policy: when the set is full, the oldest resolved alert is
// evicted to make room; if every stored alert is still unresolved the new
// alert is dropped and counted, never queued.
type AlertManager struct {
	logger     *zap.Logger
	thresholds config.AlertConfig
	capacity   int
	publisher  Publisher
	archiver   Archiver

	mu      sync.Mutex
	alerts  []*model.Alert
	dropped uint64

	now func() time.Time
}

// NewAlertManager creates an alert manager. Publisher and archiver may be
// nil; their failures are logged and never propagate into the evaluation.
func NewAlertManager(thresholds config.AlertConfig, publisher Publisher, archiver Archiver, logger *zap.Logger) *AlertManager {
	capacity := thresholds.Capacity
	if capacity <= 0 {
		capacity = 5
	}
	return &AlertManager{
		logger:     logger.Named("alert-manager"),
		thresholds: thresholds,
		capacity:   capacity,
		publisher:  publisher,
		archiver:   archiver,
		now:        time.Now,
	}
}

// condition is one per-service trigger check. These are deliberately simpler
// than the insight rules: single-service spot checks, no aggregation.
type condition struct {
	kind    model.AlertKind
	fired   bool
	message string
}

// check evaluates the trigger conditions for one record.
func (m *AlertManager) check(r model.ServiceRecord) []condition {
	critical := condition{kind: model.AlertKindCritical}
	switch {
	case r.Status == model.ServiceStatusError:
		critical.fired = true
		critical.message = fmt.Sprintf("Service %s is unreachable", r.Name)
	case r.ErrorRate > m.thresholds.ErrorRate:
		critical.fired = true
		critical.message = fmt.Sprintf("Service %s error rate %.2f%% exceeds %.2f%%",
			r.Name, r.ErrorRate*100, m.thresholds.ErrorRate*100)
	}

	warning := condition{kind: model.AlertKindWarning}
	switch {
	case r.ResponseTimeMs > m.thresholds.ResponseTimeMs:
		warning.fired = true
		warning.message = fmt.Sprintf("Service %s response time %.0fms exceeds %.0fms",
			r.Name, r.ResponseTimeMs, m.thresholds.ResponseTimeMs)
	case r.CPUPercent > m.thresholds.ResourcePercent:
		warning.fired = true
		warning.message = fmt.Sprintf("Service %s CPU usage %.1f%% exceeds %.1f%%",
			r.Name, r.CPUPercent, m.thresholds.ResourcePercent)
	case r.MemoryPercent > m.thresholds.ResourcePercent:
		warning.fired = true
		warning.message = fmt.Sprintf("Service %s memory usage %.1f%% exceeds %.1f%%",
			r.Name, r.MemoryPercent, m.thresholds.ResourcePercent)
	}

	return []condition{critical, warning}
}

// Evaluate runs the trigger checks against one committed poll cycle.
// Unresolved alerts whose condition has cleared are auto-resolved first,
// then newly true conditions without an unresolved alert of the same
// (service, kind) create one.
func (m *AlertManager) Evaluate(records []model.ServiceRecord) {
	active := make(map[string]string) // (service,kind) key -> trigger message
	for _, r := range records {
		for _, c := range m.check(r) {
			if c.fired {
				active[dedupKey(r.Name, c.kind)] = c.message
			}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.AlertEvent

	for _, a := range m.alerts {
		if a.Resolved {
			continue
		}
		if _, still := active[dedupKey(a.Service, a.Kind)]; !still {
			events = append(events, m.resolveLocked(a))
		}
	}

	for _, r := range records {
		for _, c := range m.check(r) {
			if !c.fired {
				continue
			}
			if m.unresolvedLocked(r.Name, c.kind) != nil {
				continue
			}
			if ev, ok := m.createLocked(r.Name, c.kind, c.message); ok {
				events = append(events, ev)
			}
		}
	}

	m.fanOut(events)
}

// createLocked adds a new unresolved alert, enforcing the capacity policy.
// Returns false when the alert was dropped at capacity.
func (m *AlertManager) createLocked(service string, kind model.AlertKind, message string) (model.AlertEvent, bool) {
	if len(m.alerts) >= m.capacity && !m.evictResolvedLocked() {
		m.dropped++
		m.logger.Warn("Alert dropped at capacity",
			zap.String("service", service),
			zap.String("kind", string(kind)),
			zap.Uint64("dropped_total", m.dropped))
		return model.AlertEvent{}, false
	}

	now := m.now()
	alert := &model.Alert{
		ID:        uuid.New().String(),
		Service:   service,
		Kind:      kind,
		Message:   message,
		CreatedAt: now,
	}
	m.alerts = append(m.alerts, alert)

	m.logger.Info("Alert created",
		zap.String("id", alert.ID),
		zap.String("service", service),
		zap.String("kind", string(kind)),
		zap.String("message", message))

	return model.AlertEvent{Type: model.AlertEventCreated, Alert: *alert, OccurredAt: now}, true
}

// evictResolvedLocked removes the oldest resolved alert. Returns false when
// every stored alert is still unresolved.
func (m *AlertManager) evictResolvedLocked() bool {
	for i, a := range m.alerts {
		if a.Resolved {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			return true
		}
	}
	return false
}

// resolveLocked marks an alert resolved and returns the lifecycle event.
func (m *AlertManager) resolveLocked(a *model.Alert) model.AlertEvent {
	now := m.now()
	a.Resolved = true
	a.ResolvedAt = &now

	m.logger.Info("Alert resolved",
		zap.String("id", a.ID),
		zap.String("service", a.Service),
		zap.String("kind", string(a.Kind)))

	return model.AlertEvent{Type: model.AlertEventResolved, Alert: *a, OccurredAt: now}
}

// unresolvedLocked finds the unresolved alert for a dedup key, if any.
func (m *AlertManager) unresolvedLocked(service string, kind model.AlertKind) *model.Alert {
	for _, a := range m.alerts {
		if !a.Resolved && a.Service == service && a.Kind == kind {
			return a
		}
	}
	return nil
}

// Resolve resolves the alert with the given id. Resolving an unknown or
// already resolved id is a no-op; the return value reports whether anything
// changed.
func (m *AlertManager) Resolve(id string) bool {
	m.mu.Lock()
	var events []model.AlertEvent
	resolved := false
	for _, a := range m.alerts {
		if a.ID == id && !a.Resolved {
			events = append(events, m.resolveLocked(a))
			resolved = true
			break
		}
	}
	m.mu.Unlock()

	m.fanOut(events)
	return resolved
}

// Alerts returns a copy of the stored alert set, oldest first.
func (m *AlertManager) Alerts() []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		out = append(out, *a)
	}
	return out
}

// ActiveCount returns the number of unresolved alerts.
func (m *AlertManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, a := range m.alerts {
		if !a.Resolved {
			n++
		}
	}
	return n
}

// Dropped returns the number of alerts discarded at capacity.
func (m *AlertManager) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// fanOut delivers lifecycle events to the publisher and archiver. Delivery
// failures are logged only; they never affect the alert set.
func (m *AlertManager) fanOut(events []model.AlertEvent) {
	for _, ev := range events {
		if m.publisher != nil {
			if err := m.publisher.Publish(ev); err != nil {
				m.logger.Error("Failed to publish alert event",
					zap.String("alert_id", ev.Alert.ID),
					zap.Error(err))
			}
		}
		if m.archiver != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := m.archiver.Store(ctx, ev); err != nil {
				m.logger.Error("Failed to archive alert event",
					zap.String("alert_id", ev.Alert.ID),
					zap.Error(err))
			}
			cancel()
		}
	}
}

func dedupKey(service string, kind model.AlertKind) string {
	return service + "/" + string(kind)
}
