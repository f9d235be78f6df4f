package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/finpulse/finpulse/internal/config"
	"github.com/finpulse/finpulse/internal/metrics"
	"github.com/finpulse/finpulse/internal/model"
)

func defaultThresholds() config.RuleThresholds {
	return config.RuleThresholds{
		ResponseTimeMs: 60,
		ErrorRate:      0.03,
		Connections:    150,
	}
}

func ruleInput(records []model.ServiceRecord) RuleInput {
	return RuleInput{
		Overview: BuildOverview(records, 5*time.Second, time.Now()),
		Records:  records,
		Buffer:   metrics.NewBuffer(20),
	}
}

func healthyFleet() []model.ServiceRecord {
	return []model.ServiceRecord{
		{Name: "accounts", Status: model.ServiceStatusHealthy, ResponseTimeMs: 45, ErrorRate: 0.01, ActiveConnections: 30},
		{Name: "payments", Status: model.ServiceStatusHealthy, ResponseTimeMs: 45, ErrorRate: 0.01, ActiveConnections: 30},
		{Name: "investments", Status: model.ServiceStatusHealthy, ResponseTimeMs: 45, ErrorRate: 0.01, ActiveConnections: 30},
	}
}

func TestEvaluateRules_NominalFallback(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	// Three healthy services, mean response time 45ms, mean error rate
	// 0.01, 90 total connections: nothing fires except the fallback.
	insights := EvaluateRules(ruleInput(healthyFleet()), defaultThresholds(), time.Now(), logger)

	require.Len(t, insights, 1)
	require.Equal(t, model.InsightTypeHealth, insights[0].Type)
	require.Equal(t, model.InsightSeverityLow, insights[0].Severity)
	require.Equal(t, 0.95, insights[0].Confidence)
	require.NotEmpty(t, insights[0].Recommendations)
}

func TestEvaluateRules_AnomalyScenario(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	records[1].ErrorRate = 0.08 // mean = (0.01+0.08+0.01)/3 ≈ 0.033 > 0.03

	insights := EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)

	var anomaly *model.Insight
	for i := range insights {
		if insights[i].Type == model.InsightTypeAnomaly {
			anomaly = &insights[i]
		}
	}
	require.NotNil(t, anomaly)
	require.Equal(t, model.InsightSeverityHigh, anomaly.Severity)
	require.Equal(t, 0.92, anomaly.Confidence)
}

func TestEvaluateRules_PredictionNamesAffected(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	records[0].ResponseTimeMs = 120
	records[1].ResponseTimeMs = 80
	// mean = (120+80+45)/3 ≈ 81.7 > 60

	insights := EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)

	var prediction *model.Insight
	for i := range insights {
		if insights[i].Type == model.InsightTypePrediction {
			prediction = &insights[i]
		}
	}
	require.NotNil(t, prediction)
	require.Equal(t, model.InsightSeverityMedium, prediction.Severity)
	require.Equal(t, 0.87, prediction.Confidence)
	require.ElementsMatch(t, []string{"accounts", "payments"}, prediction.Detail["affected_services"])
}

func TestEvaluateRules_Capacity(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	for i := range records {
		records[i].ActiveConnections = 60 // total 180 > 150
	}

	insights := EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)

	var capacity *model.Insight
	for i := range insights {
		if insights[i].Type == model.InsightTypeCapacity {
			capacity = &insights[i]
		}
	}
	require.NotNil(t, capacity)
	require.Equal(t, 0.78, capacity.Confidence)
	require.Equal(t, model.InsightSeverityMedium, capacity.Severity)
}

func TestEvaluateRules_HealthSeverityEscalates(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	records[0].Status = model.ServiceStatusError
	records[0].ErrorRate = 0.01 // keep the anomaly rule quiet

	// 2/3 healthy: medium severity.
	insights := EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)
	health := findInsight(t, insights, model.InsightTypeHealth)
	require.Equal(t, model.InsightSeverityMedium, health.Severity)
	require.Equal(t, 0.83, health.Confidence)
	require.ElementsMatch(t, []string{"accounts"}, health.Detail["degraded_services"])

	// 1/3 healthy: below 0.7, high severity.
	records[1].Status = model.ServiceStatusWarning
	insights = EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)
	health = findInsight(t, insights, model.InsightTypeHealth)
	require.Equal(t, model.InsightSeverityHigh, health.Severity)
}

func TestEvaluateRules_Deterministic(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	records[0].ErrorRate = 0.2
	records[1].ResponseTimeMs = 200
	in := ruleInput(records)
	now := time.Now()

	first := EvaluateRules(in, defaultThresholds(), now, logger)
	second := EvaluateRules(in, defaultThresholds(), now, logger)
	require.Equal(t, first, second)
}

func TestEvaluateRules_FallbackOnlyWhenNothingFired(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	records := healthyFleet()
	records[0].ErrorRate = 0.5

	insights := EvaluateRules(ruleInput(records), defaultThresholds(), time.Now(), logger)
	for _, ins := range insights {
		require.NotEqual(t, 0.95, ins.Confidence, "fallback must not fire alongside other rules")
	}
}

func TestEvalRecovered_PanicIsContained(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	bad := Rule{
		Name: "bad",
		Eval: func(RuleInput, config.RuleThresholds) (model.Insight, bool) {
			panic("rule bug")
		},
	}

	insight, fired := evalRecovered(bad, ruleInput(healthyFleet()), defaultThresholds(), logger)
	require.False(t, fired)
	require.Zero(t, insight)
}

func findInsight(t *testing.T, insights []model.Insight, typ model.InsightType) model.Insight {
	t.Helper()
	for _, ins := range insights {
		if ins.Type == typ {
			return ins
		}
	}
	t.Fatalf("no insight of type %s", typ)
	return model.Insight{}
}
