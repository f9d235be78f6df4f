package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/model"
)

func newTestHistory(t *testing.T) *AlertHistory {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	h, err := NewAlertHistory(logger, filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func event(id, service string, typ model.AlertEventType, at time.Time) model.AlertEvent {
	return model.AlertEvent{
		Type: typ,
		Alert: model.Alert{
			ID:      id,
			Service: service,
			Kind:    model.AlertKindCritical,
			Message: "Service " + service + " is unreachable",
		},
		OccurredAt: at,
	}
}

func TestAlertHistory_StoreAndList(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.Store(ctx, event("a-1", "payments", model.AlertEventCreated, base)))
	require.NoError(t, h.Store(ctx, event("a-1", "payments", model.AlertEventResolved, base.Add(time.Minute))))
	require.NoError(t, h.Store(ctx, event("a-2", "accounts", model.AlertEventCreated, base.Add(2*time.Minute))))

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	require.Equal(t, "a-2", entries[0].AlertID)
	require.Equal(t, model.AlertEventCreated, entries[0].Event)
	require.Equal(t, model.AlertEventResolved, entries[1].Event)
	require.Equal(t, model.AlertKindCritical, entries[0].Kind)
}

func TestAlertHistory_ListLimit(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, h.Store(ctx, event("a-1", "payments", model.AlertEventCreated, base.Add(time.Duration(i)*time.Second))))
	}

	entries, err := h.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAlertHistory_DeleteBefore(t *testing.T) {
	h := newTestHistory(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.Store(ctx, event("old", "payments", model.AlertEventCreated, base)))
	require.NoError(t, h.Store(ctx, event("new", "payments", model.AlertEventCreated, base.Add(time.Hour))))

	require.NoError(t, h.DeleteBefore(ctx, base.Add(time.Minute)))

	entries, err := h.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "new", entries[0].AlertID)
}
