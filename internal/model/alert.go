package model

import "time"

// AlertKind represents the kind of an alert
type AlertKind string

const (
	AlertKindCritical AlertKind = "critical"
	AlertKindWarning  AlertKind = "warning"
	AlertKindInfo     AlertKind = "info"
)

// Alert tracks an ongoing condition on a single service until it is resolved,
// either explicitly or because the condition cleared on a later evaluation.
// At most one unresolved alert exists per (service, kind) pair at a time.
type Alert struct {
	ID         string     `json:"id"`
	Service    string     `json:"service"`
	Kind       AlertKind  `json:"kind"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"created_at"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// AlertEventType distinguishes lifecycle events sent to publishers and the
// audit archive.
type AlertEventType string

const (
	AlertEventCreated  AlertEventType = "created"
	AlertEventResolved AlertEventType = "resolved"
)

// AlertEvent is the record fanned out when an alert changes state.
type AlertEvent struct {
	Type       AlertEventType `json:"type"`
	Alert      Alert          `json:"alert"`
	OccurredAt time.Time      `json:"occurred_at"`
}
