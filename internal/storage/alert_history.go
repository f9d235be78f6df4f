package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/model"
)

// AlertHistoryEntry is one archived alert lifecycle event.
type AlertHistoryEntry struct {
	ID         int64                `json:"id"`
	AlertID    string               `json:"alert_id"`
	Service    string               `json:"service"`
	Kind       model.AlertKind      `json:"kind"`
	Event      model.AlertEventType `json:"event"`
	Message    string               `json:"message"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// AlertHistory is an append-only SQLite archive of alert lifecycle events.
// The engine only ever writes to it; nothing in the evaluation path reads it
// back, so engine behavior never depends on archived state.
type AlertHistory struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewAlertHistory opens (or creates) the archive at dbPath.
func NewAlertHistory(logger *zap.Logger, dbPath string) (*AlertHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	h := &AlertHistory{
		logger: logger.Named("alert-history"),
		db:     db,
	}

	if err := h.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

// initialize creates the necessary tables if they don't exist
func (h *AlertHistory) initialize() error {
	_, err := h.db.Exec(`
		CREATE TABLE IF NOT EXISTS alert_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			alert_id TEXT NOT NULL,
			service TEXT NOT NULL,
			kind TEXT NOT NULL,
			event TEXT NOT NULL,
			message TEXT,
			occurred_at DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_alert_history_alert_id ON alert_history(alert_id);
		CREATE INDEX IF NOT EXISTS idx_alert_history_service ON alert_history(service);
		CREATE INDEX IF NOT EXISTS idx_alert_history_occurred_at ON alert_history(occurred_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Store appends one lifecycle event.
func (h *AlertHistory) Store(ctx context.Context, event model.AlertEvent) error {
	_, err := h.db.ExecContext(ctx, `
		INSERT INTO alert_history (alert_id, service, kind, event, message, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		event.Alert.ID,
		event.Alert.Service,
		string(event.Alert.Kind),
		string(event.Type),
		event.Alert.Message,
		event.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store alert event: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first.
func (h *AlertHistory) List(ctx context.Context, limit int) ([]*AlertHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, alert_id, service, kind, event, message, occurred_at
		FROM alert_history
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert events: %w", err)
	}
	defer rows.Close()

	var entries []*AlertHistoryEntry
	for rows.Next() {
		var e AlertHistoryEntry
		var kind, event string
		if err := rows.Scan(&e.ID, &e.AlertID, &e.Service, &kind, &event, &e.Message, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}
		e.Kind = model.AlertKind(kind)
		e.Event = model.AlertEventType(event)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes events older than the cutoff.
func (h *AlertHistory) DeleteBefore(ctx context.Context, before time.Time) error {
	result, err := h.db.ExecContext(ctx,
		`DELETE FROM alert_history WHERE occurred_at < ?`, before)
	if err != nil {
		return fmt.Errorf("failed to delete old alert events: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n > 0 {
		h.logger.Info("Cleaned up alert history",
			zap.Int64("deleted", n),
			zap.Time("before", before))
	}
	return nil
}

// Close closes the underlying database.
func (h *AlertHistory) Close() error {
	return h.db.Close()
}
