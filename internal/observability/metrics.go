package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/llm"
	"github.com/JonDMorrison/brandsinblooms-platform-sub005/internal/types"
)

const metricsNamespace = "sitegen"

// MetricsObserver records generation events as Prometheus metrics on its own registry.
type MetricsObserver struct {
	registry *prometheus.Registry

	unitOutcomes     *prometheus.CounterVec
	repairsApplied   *prometheus.CounterVec
	transportRetries *prometheus.CounterVec
	tokensUsed       *prometheus.CounterVec
	unitAttempts     *prometheus.HistogramVec
	unitDuration     *prometheus.HistogramVec
}

// NewMetricsObserver creates the metrics and registers them on a new registry.
func NewMetricsObserver() *MetricsObserver {
	m := &MetricsObserver{registry: prometheus.NewRegistry()}

	m.unitOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unit_outcomes_total",
			Help:      "Total number of unit generations by outcome",
		},
		[]string{"unit", "status", "reason"},
	)

	m.repairsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "repairs_applied_total",
			Help:      "Total number of structural repairs applied to model output",
		},
		[]string{"unit", "step"},
	)

	m.transportRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transport_retries_total",
			Help:      "Total number of retried transport calls",
		},
		[]string{"unit", "kind"},
	)

	m.tokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "tokens_total",
			Help:      "Total number of tokens billed",
		},
		[]string{"unit", "type"},
	)

	m.unitAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "unit_attempts",
			Help:      "Transport calls made per unit generation",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"unit"},
	)

	m.unitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "unit_duration_seconds",
			Help:      "Unit generation duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"unit"},
	)

	m.registry.MustRegister(
		m.unitOutcomes,
		m.repairsApplied,
		m.transportRetries,
		m.tokensUsed,
		m.unitAttempts,
		m.unitDuration,
	)
	return m
}

// Registry returns the registry holding the generation metrics.
func (m *MetricsObserver) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metrics to path in the text exposition format.
func (m *MetricsObserver) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// OnUnitOutcome counts the outcome and its token usage.
func (m *MetricsObserver) OnUnitOutcome(unit types.UnitType, outcome *types.UnitOutcome) {
	reason := "none"
	if outcome.Failure != nil {
		reason = string(outcome.Failure.Reason)
	}
	u := unit.String()
	m.unitOutcomes.WithLabelValues(u, string(outcome.Status), reason).Inc()
	m.tokensUsed.WithLabelValues(u, "prompt").Add(float64(outcome.Usage.PromptTokens))
	m.tokensUsed.WithLabelValues(u, "completion").Add(float64(outcome.Usage.CompletionTokens))
	m.unitAttempts.WithLabelValues(u).Observe(float64(outcome.Attempts))
	m.unitDuration.WithLabelValues(u).Observe(outcome.Duration.Seconds())
}

// OnRepairApplied counts one repair step.
func (m *MetricsObserver) OnRepairApplied(unit types.UnitType, step types.RepairStep) {
	m.repairsApplied.WithLabelValues(unit.String(), string(step)).Inc()
}

// OnTransportRetry counts one retry.
func (m *MetricsObserver) OnTransportRetry(unit types.UnitType, _ int, err *llm.TransportError) {
	m.transportRetries.WithLabelValues(unit.String(), string(err.Kind)).Inc()
}
