package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/model"
)

// Source produces one poll cycle's complete record list.
type Source interface {
	PollAll(ctx context.Context) []model.ServiceRecord
}

// AlertSink receives each committed cycle's records for alert evaluation.
type AlertSink interface {
	Evaluate(records []model.ServiceRecord)
}

// snapshot is one fully-built generation of engine state. Snapshots are
// immutable once published; readers always see a complete cycle, never a
// partial write.
type snapshot struct {
	records  []model.ServiceRecord
	overview model.SystemOverview
	insights []model.Insight
}

// Engine owns the shared dashboard state. Poll cycles and rule evaluation
// cycles each build the next snapshot fully, then swap it in under the
// write lock; readers take the read lock only long enough to copy out.
type Engine struct {
	logger     *zap.Logger
	source     Source
	alerts     AlertSink
	buffer     *metrics.Buffer
	thresholds config.RuleThresholds
	pollWindow time.Duration

	mu   sync.RWMutex
	snap *snapshot

	now func() time.Time
}

// New creates an engine. The pollWindow is the poll cadence, used to convert
// request rates into per-cycle request totals. The alert sink may be nil.
func New(source Source, buffer *metrics.Buffer, alerts AlertSink, thresholds config.RuleThresholds, pollWindow time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		logger:     logger.Named("engine"),
		source:     source,
		alerts:     alerts,
		buffer:     buffer,
		thresholds: thresholds,
		pollWindow: pollWindow,
		snap:       &snapshot{},
		now:        time.Now,
	}
}

// PollCycle runs one complete poll cycle: refresh every service record,
// rebuild the overview, append this cycle's derived samples, feed the alert
// manager, and publish the new snapshot. Insights carry over unchanged until
// the next evaluation cycle.
func (e *Engine) PollCycle(ctx context.Context) {
	records := e.source.PollAll(ctx)
	now := e.now()
	overview := BuildOverview(records, e.pollWindow, now)

	e.buffer.Push(model.SeriesRequestRate, overview.RequestsPerSecond, now)
	e.buffer.Push(model.SeriesResponseTime, overview.AvgResponseTimeMs, now)
	e.buffer.Push(model.SeriesErrorRate, overview.ErrorRate, now)
	e.buffer.Push(model.SeriesCPUUsage, overview.AvgCPUPercent, now)
	e.buffer.Push(model.SeriesMemoryUsage, overview.AvgMemoryPercent, now)

	if e.alerts != nil {
		e.alerts.Evaluate(records)
	}

	e.mu.Lock()
	e.snap = &snapshot{
		records:  records,
		overview: overview,
		insights: e.snap.insights,
	}
	e.mu.Unlock()

	e.logger.Debug("Poll cycle committed",
		zap.Int("services", overview.TotalServices),
		zap.Int("healthy", overview.HealthyServices),
		zap.Float64("error_rate", overview.ErrorRate))
}

// EvaluateCycle re-runs the rule set against the latest committed snapshot
// and swaps in the resulting insight set. It always reads a full cycle's
// state, never a partially updated one.
func (e *Engine) EvaluateCycle(ctx context.Context) {
	e.mu.RLock()
	cur := e.snap
	e.mu.RUnlock()

	in := RuleInput{
		Overview: cur.overview,
		Records:  cur.records,
		Buffer:   e.buffer,
	}
	insights := EvaluateRules(in, e.thresholds, e.now(), e.logger)

	e.mu.Lock()
	e.snap = &snapshot{
		records:  e.snap.records,
		overview: e.snap.overview,
		insights: insights,
	}
	e.mu.Unlock()

	e.logger.Debug("Rule evaluation committed", zap.Int("insights", len(insights)))
}

// ServiceRecords returns the latest committed record list.
func (e *Engine) ServiceRecords() []model.ServiceRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.ServiceRecord, len(e.snap.records))
	copy(out, e.snap.records)
	return out
}

// Overview returns the latest committed system overview.
func (e *Engine) Overview() model.SystemOverview {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap.overview
}

// Insights returns the latest committed insight set.
func (e *Engine) Insights() []model.Insight {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]model.Insight, len(e.snap.insights))
	copy(out, e.snap.insights)
	return out
}

// SeriesSnapshot returns the named metric series in chronological order.
func (e *Engine) SeriesSnapshot(name string) []model.MetricSample {
	return e.buffer.Snapshot(name)
}

// SeriesNames returns the names of all known metric series.
func (e *Engine) SeriesNames() []string {
	return e.buffer.Names()
}
