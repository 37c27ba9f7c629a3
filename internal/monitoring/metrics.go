package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the guidance engine
type Metrics struct {
	GuidanceScheduled *prometheus.CounterVec
	GuidanceDropped   *prometheus.CounterVec
	DeliveryFailures  *prometheus.CounterVec
	DecisionDuration  *prometheus.HistogramVec
	RuleUpdates       *prometheus.CounterVec
	EventsConsumed    *prometheus.CounterVec
	ActiveConnections prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	metrics := &Metrics{
		GuidanceScheduled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidance_scheduled_total",
				Help: "Total number of guidance notifications handed to the delivery layer",
			},
			[]string{"activity"},
		),
		GuidanceDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidance_dropped_total",
				Help: "Total number of scheduling attempts dropped, by pipeline stage",
			},
			[]string{"activity", "reason"},
		),
		DeliveryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidance_delivery_failures_total",
				Help: "Total number of delivery submissions the platform refused",
			},
			[]string{"activity"},
		),
		DecisionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "guidance_decision_duration_seconds",
				Help:    "Time taken to run one scheduling decision through the pipeline",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"activity"},
		),
		RuleUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guidance_rule_updates_total",
				Help: "Total number of user-initiated rule configuration updates",
			},
			[]string{"activity"},
		),
		EventsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behavioral_events_consumed_total",
				Help: "Total number of behavioral events consumed from the queue",
			},
			[]string{"activity", "status"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_connections",
				Help: "Number of active connections to the service",
			},
		),
	}

	// Register all metrics
	prometheus.MustRegister(
		metrics.GuidanceScheduled,
		metrics.GuidanceDropped,
		metrics.DeliveryFailures,
		metrics.DecisionDuration,
		metrics.RuleUpdates,
		metrics.EventsConsumed,
		metrics.ActiveConnections,
	)

	return metrics
}

// RecordScheduled records a notification handed to the delivery layer
func (m *Metrics) RecordScheduled(activity string) {
	m.GuidanceScheduled.WithLabelValues(activity).Inc()
}

// RecordDropped records a scheduling attempt dropped at a pipeline stage
func (m *Metrics) RecordDropped(activity, reason string) {
	m.GuidanceDropped.WithLabelValues(activity, reason).Inc()
}

// RecordDeliveryFailure records a submission the platform refused
func (m *Metrics) RecordDeliveryFailure(activity string) {
	m.DeliveryFailures.WithLabelValues(activity).Inc()
}

// RecordDecisionDuration records the duration of one pipeline pass
func (m *Metrics) RecordDecisionDuration(activity string, seconds float64) {
	m.DecisionDuration.WithLabelValues(activity).Observe(seconds)
}

// RecordRuleUpdate records a rule configuration change
func (m *Metrics) RecordRuleUpdate(activity string) {
	m.RuleUpdates.WithLabelValues(activity).Inc()
}

// RecordEventConsumed records a behavioral event read from the queue
func (m *Metrics) RecordEventConsumed(activity, status string) {
	m.EventsConsumed.WithLabelValues(activity, status).Inc()
}

// IncrementActiveConnections increments active connections
func (m *Metrics) IncrementActiveConnections() {
	m.ActiveConnections.Inc()
}

// DecrementActiveConnections decrements active connections
func (m *Metrics) DecrementActiveConnections() {
	m.ActiveConnections.Dec()
}

// Handler returns the Prometheus metrics HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
