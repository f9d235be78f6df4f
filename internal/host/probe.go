package host

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/model"
)

// Probe samples the dashboard host's own CPU and memory usage into the
// sample buffer, alongside the polled service metrics. A failed reading is
// logged and skipped; the next cycle tries again.
type Probe struct {
	logger *zap.Logger
	buffer *metrics.Buffer
}

// NewProbe creates a host probe writing into the given buffer.
func NewProbe(buffer *metrics.Buffer, logger *zap.Logger) *Probe {
	return &Probe{
		logger: logger.Named("host-probe"),
		buffer: buffer,
	}
}

// Collect takes one CPU and one memory reading and appends them to the
// hostCpu and hostMemory series.
func (p *Probe) Collect(ctx context.Context) {
	now := time.Now()

	cpuPercent, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil || len(cpuPercent) == 0 {
		p.logger.Warn("Failed to read host CPU usage", zap.Error(err))
	} else {
		p.buffer.Push(model.SeriesHostCPU, cpuPercent[0], now)
	}

	memInfo, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		p.logger.Warn("Failed to read host memory usage", zap.Error(err))
		return
	}
	p.buffer.Push(model.SeriesHostMemory, memInfo.UsedPercent, now)
}
