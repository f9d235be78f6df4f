package engine

import (
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/model"
)

// BufferView is the read-only view of the sample buffer handed to rules.
type BufferView interface {
	Latest(name string) (model.MetricSample, bool)
	Series(name string) iter.Seq[model.MetricSample]
}

// RuleInput is one evaluation cycle's immutable input: a fully committed
// overview, the records it was derived from, and the sample buffers.
type RuleInput struct {
	Overview model.SystemOverview
	Records  []model.ServiceRecord
	Buffer   BufferView
}

// Rule evaluates one condition against the input. The second return value
// reports whether the rule fired.
//
// The rule set is deterministic by design: confidence and severity are fixed
// per-rule constants, not statistical outputs. The original dashboard labeled
// this layer "AI"; it is and must remain plain threshold logic.
type Rule struct {
	Name string
	Eval func(in RuleInput, t config.RuleThresholds) (model.Insight, bool)
}

// Rules returns the fixed rule set, evaluated in order every cycle.
func Rules() []Rule {
	return []Rule{
		{Name: "prediction", Eval: predictionRule},
		{Name: "anomaly", Eval: anomalyRule},
		{Name: "capacity", Eval: capacityRule},
		{Name: "health", Eval: healthRule},
	}
}

// EvaluateRules runs every rule against the input and returns the insight
// set for this cycle. Rules are independent and never short-circuit; a rule
// that panics is logged and contributes nothing while the rest still run.
// When no rule fires, exactly one nominal health insight is returned.
func EvaluateRules(in RuleInput, t config.RuleThresholds, now time.Time, logger *zap.Logger) []model.Insight {
	var insights []model.Insight
	for _, rule := range Rules() {
		insight, fired := evalRecovered(rule, in, t, logger)
		if !fired {
			continue
		}
		insight.GeneratedAt = now
		insights = append(insights, insight)
	}

	if len(insights) == 0 {
		nominal := nominalInsight(in)
		nominal.GeneratedAt = now
		insights = append(insights, nominal)
	}
	return insights
}

// evalRecovered shields the evaluation loop from a panicking rule.
func evalRecovered(rule Rule, in RuleInput, t config.RuleThresholds, logger *zap.Logger) (insight model.Insight, fired bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Rule evaluation panicked",
				zap.String("rule", rule.Name),
				zap.Any("panic", r))
			insight, fired = model.Insight{}, false
		}
	}()
	return rule.Eval(in, t)
}

// predictionRule fires when the mean response time across services exceeds
// the configured threshold, naming the services above it.
func predictionRule(in RuleInput, t config.RuleThresholds) (model.Insight, bool) {
	if in.Overview.TotalServices == 0 || in.Overview.AvgResponseTimeMs <= t.ResponseTimeMs {
		return model.Insight{}, false
	}

	var affected []string
	for _, r := range in.Records {
		if r.ResponseTimeMs > t.ResponseTimeMs {
			affected = append(affected, r.Name)
		}
	}

	return model.Insight{
		Type:       model.InsightTypePrediction,
		Title:      "Response time degradation expected",
		Description: fmt.Sprintf("Mean response time is %.0fms, above the %.0fms threshold; latency is likely to keep climbing under current load",
			in.Overview.AvgResponseTimeMs, t.ResponseTimeMs),
		Confidence: 0.87,
		Severity:   model.InsightSeverityMedium,
		Recommendations: []string{
			"Consider scaling services or optimizing database queries",
			"Review response time trends before the next deployment",
		},
		Detail: map[string]any{
			"affected_services": affected,
			"mean_response_ms":  in.Overview.AvgResponseTimeMs,
			"threshold_ms":      t.ResponseTimeMs,
		},
	}, true
}

// anomalyRule fires when the mean error rate across services exceeds the
// configured threshold.
func anomalyRule(in RuleInput, t config.RuleThresholds) (model.Insight, bool) {
	if in.Overview.TotalServices == 0 || in.Overview.ErrorRate <= t.ErrorRate {
		return model.Insight{}, false
	}

	return model.Insight{
		Type:       model.InsightTypeAnomaly,
		Title:      "Elevated error rate detected",
		Description: fmt.Sprintf("Mean error rate is %.2f%%, above the %.2f%% threshold",
			in.Overview.ErrorRate*100, t.ErrorRate*100),
		Confidence: 0.92,
		Severity:   model.InsightSeverityHigh,
		Recommendations: []string{
			"Investigate error logs and recent deployments",
			"Check upstream dependencies for partial outages",
		},
		Detail: map[string]any{
			"error_rate": in.Overview.ErrorRate,
			"threshold":  t.ErrorRate,
		},
	}, true
}

// capacityRule fires when the total active connection count exceeds the
// configured threshold.
func capacityRule(in RuleInput, t config.RuleThresholds) (model.Insight, bool) {
	if in.Overview.ActiveConnections <= t.Connections {
		return model.Insight{}, false
	}

	return model.Insight{
		Type:       model.InsightTypeCapacity,
		Title:      "Connection capacity approaching limits",
		Description: fmt.Sprintf("%d active connections across services, above the %d threshold",
			in.Overview.ActiveConnections, t.Connections),
		Confidence: 0.78,
		Severity:   model.InsightSeverityMedium,
		Recommendations: []string{
			"Scale horizontally or optimize CPU-intensive operations",
			"Review connection pool limits and keep-alive settings",
		},
		Detail: map[string]any{
			"active_connections": in.Overview.ActiveConnections,
			"threshold":          t.Connections,
		},
	}, true
}

// healthRule fires when any configured service is not healthy, listing the
// degraded services. Severity escalates when fewer than 70% are healthy.
func healthRule(in RuleInput, _ config.RuleThresholds) (model.Insight, bool) {
	if in.Overview.TotalServices == 0 || in.Overview.HealthScore >= 1.0 {
		return model.Insight{}, false
	}

	var degraded []string
	for _, r := range in.Records {
		if !r.Healthy() {
			degraded = append(degraded, r.Name)
		}
	}

	severity := model.InsightSeverityMedium
	if in.Overview.HealthScore < 0.7 {
		severity = model.InsightSeverityHigh
	}

	return model.Insight{
		Type:       model.InsightTypeHealth,
		Title:      "Degraded services detected",
		Description: fmt.Sprintf("%d of %d services are not healthy",
			in.Overview.TotalServices-in.Overview.HealthyServices, in.Overview.TotalServices),
		Confidence: 0.83,
		Severity:   severity,
		Recommendations: []string{
			"System health is degrading - consider immediate intervention",
			"Restart or roll back the affected services",
		},
		Detail: map[string]any{
			"degraded_services": degraded,
			"health_score":      in.Overview.HealthScore,
		},
	}, true
}

// nominalInsight is the fallback emitted when no rule fired.
func nominalInsight(in RuleInput) model.Insight {
	return model.Insight{
		Type:        model.InsightTypeHealth,
		Title:       "All systems nominal",
		Description: fmt.Sprintf("All %d services are operating within normal parameters", in.Overview.TotalServices),
		Confidence:  0.95,
		Severity:    model.InsightSeverityLow,
		Recommendations: []string{
			"System is healthy - maintain current monitoring",
		},
	}
}
