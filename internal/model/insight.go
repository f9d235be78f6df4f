package model

import "time"

// InsightType represents the category of an advisory insight
type InsightType string

const (
	InsightTypePrediction InsightType = "prediction"
	InsightTypeAnomaly    InsightType = "anomaly"
	InsightTypeCapacity   InsightType = "capacity"
	InsightTypeHealth     InsightType = "health"
)

// InsightSeverity represents how urgent an insight is
type InsightSeverity string

const (
	InsightSeverityLow    InsightSeverity = "low"
	InsightSeverityMedium InsightSeverity = "medium"
	InsightSeverityHigh   InsightSeverity = "high"
)

// Insight is an advisory record produced by rule evaluation. The insight set
// is recomputed wholesale each evaluation cycle; insights are never merged or
// carried across cycles.
//
// Confidence and severity are fixed per-rule constants. The rules are
// deterministic threshold heuristics, not a trained model, and the constants
// must not be reinterpreted statistically.
type Insight struct {
	Type            InsightType     `json:"type"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Confidence      float64         `json:"confidence"`
	Severity        InsightSeverity `json:"severity"`
	Recommendations []string        `json:"recommendations"`
	Detail          map[string]any  `json:"detail,omitempty"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
