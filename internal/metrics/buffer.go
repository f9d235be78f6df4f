package metrics

import (
	"iter"
	"sync"
	"time"

	"github.com/finpulse/finpulse/internal/model"
)

// Buffer holds a fixed-capacity rolling window of samples per named series.
// Series are created lazily on first push. Insertion is append-at-tail,
// eviction is remove-at-head once a series exceeds capacity, so a series
// always holds the most recent samples in chronological order.
type Buffer struct {
	capacity int
	mu       sync.RWMutex
	series   map[string][]model.MetricSample
}

// DefaultCapacity is the per-series sample cap used when none is configured.
const DefaultCapacity = 20

// NewBuffer creates a buffer with the given per-series capacity.
// Non-positive capacities fall back to DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity: capacity,
		series:   make(map[string][]model.MetricSample),
	}
}

// Push appends a sample to the named series, evicting the oldest sample when
// the series would exceed capacity. Unknown series names are created, never
// rejected.
func (b *Buffer) Push(name string, value float64, ts time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := append(b.series[name], model.MetricSample{Timestamp: ts, Value: value})
	if len(s) > b.capacity {
		s = append(s[:0], s[len(s)-b.capacity:]...)
	}
	b.series[name] = s
}

// Latest returns the most recent sample of the named series. The second
// return value is false when the series is empty or unknown.
func (b *Buffer) Latest(name string) (model.MetricSample, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.series[name]
	if len(s) == 0 {
		return model.MetricSample{}, false
	}
	return s[len(s)-1], true
}

// Len returns the current length of the named series.
func (b *Buffer) Len(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.series[name])
}

// Snapshot returns a copy of the named series in chronological order.
// An unknown series yields a nil slice.
func (b *Buffer) Snapshot(name string) []model.MetricSample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := b.series[name]
	if len(s) == 0 {
		return nil
	}
	out := make([]model.MetricSample, len(s))
	copy(out, s)
	return out
}

// Series returns a restartable read-only view of the named series. Each
// iteration ranges over a snapshot taken when Series was called, so later
// pushes do not affect it and the sequence can be ranged more than once.
func (b *Buffer) Series(name string) iter.Seq[model.MetricSample] {
	snap := b.Snapshot(name)
	return func(yield func(model.MetricSample) bool) {
		for _, s := range snap {
			if !yield(s) {
				return
			}
		}
	}
}

// Names returns the names of all known series.
func (b *Buffer) Names() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.series))
	for name := range b.series {
		names = append(names, name)
	}
	return names
}
