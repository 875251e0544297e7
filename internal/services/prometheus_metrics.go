package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	transactionsCreated  *prometheus.CounterVec
	transactionsDeleted  *prometheus.CounterVec
	importRows           *prometheus.CounterVec
	importsTotal         *prometheus.CounterVec
	importDuration       prometheus.Histogram
	insightsComputed     prometheus.Counter
	insightsDuration     prometheus.Histogram
	goalContributions    prometheus.Counter
	goalsCompleted       prometheus.Counter
	achievementScore     prometheus.Histogram
	authenticationEvents *prometheus.CounterVec
}

// NewPrometheusMetrics registers the budgeting metrics with reg. Passing nil
// uses the default registry served on /metrics.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_transactions_created_total",
				Help: "Total number of transactions stored, by source",
			},
			[]string{"source"},
		),
		transactionsDeleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_transactions_deleted_total",
				Help: "Total number of transactions deleted, by operation",
			},
			[]string{"operation"},
		),
		importRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_import_rows_total",
				Help: "Imported statement rows by format and outcome",
			},
			[]string{"format", "outcome"},
		),
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_imports_total",
				Help: "Import requests by format and status",
			},
			[]string{"format", "status"},
		),
		importDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_import_duration_milliseconds",
				Help:    "Import processing duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		insightsComputed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_insights_computed_total",
				Help: "Total number of insights computations",
			},
		),
		insightsDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_insights_duration_seconds",
				Help:    "Insights computation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		goalContributions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_goal_contributions_total",
				Help: "Total number of contributions made towards goals",
			},
		),
		goalsCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "budget_goals_completed_total",
				Help: "Total number of goals that reached their target",
			},
		),
		achievementScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "budget_achievement_score",
				Help:    "Distribution of evaluated reward scores",
				Buckets: prometheus.LinearBuckets(0, 100, 6),
			},
		),
		authenticationEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "transaction_created":
		m.transactionsCreated.WithLabelValues(labelOr(tags["source"], "manual")).Inc()
	case "transaction_deleted":
		m.transactionsDeleted.WithLabelValues(labelOr(tags["operation"], "single")).Inc()
	case "import_completed":
		m.importsTotal.WithLabelValues(labelOr(tags["format"], "unknown"), labelOr(tags["status"], "success")).Inc()
	case "insights_computed":
		m.insightsComputed.Inc()
	case "goal_contribution":
		m.goalContributions.Inc()
	case "goal_completed":
		m.goalsCompleted.Inc()
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEvents.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "import":
		m.importDuration.Observe(float64(duration.Milliseconds()))
	case "insights":
		m.insightsDuration.Observe(duration.Seconds())
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "import_rows":
		m.importRows.WithLabelValues(labelOr(tags["format"], "unknown"), labelOr(tags["outcome"], "success")).Add(value)
	case "transactions_deleted":
		m.transactionsDeleted.WithLabelValues(labelOr(tags["operation"], "clear")).Add(value)
	case "transactions_created":
		m.transactionsCreated.WithLabelValues(labelOr(tags["source"], "manual")).Add(value)
	case "achievement_score":
		m.achievementScore.Observe(value)
	}
}

func labelOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
