package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/model"
)

func TestProbe_Collect(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	buffer := metrics.NewBuffer(20)
	probe := NewProbe(buffer, logger)

	probe.Collect(context.Background())

	cpu, ok := buffer.Latest(model.SeriesHostCPU)
	require.True(t, ok)
	require.GreaterOrEqual(t, cpu.Value, 0.0)
	require.LessOrEqual(t, cpu.Value, 100.0)

	mem, ok := buffer.Latest(model.SeriesHostMemory)
	require.True(t, ok)
	require.Greater(t, mem.Value, 0.0)
	require.LessOrEqual(t, mem.Value, 100.0)
}

func TestProbe_CollectAppends(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	buffer := metrics.NewBuffer(20)
	probe := NewProbe(buffer, logger)

	probe.Collect(context.Background())
	probe.Collect(context.Background())

	require.Equal(t, 2, buffer.Len(model.SeriesHostMemory))
}
