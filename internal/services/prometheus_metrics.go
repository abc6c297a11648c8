package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	refreshTotal           *prometheus.CounterVec
	refreshDuration        prometheus.Histogram
	submitTotal            *prometheus.CounterVec
	submitDuration         prometheus.Histogram
	submitRejectedTotal    prometheus.Counter
	deleteTotal            *prometheus.CounterVec
	expensesInRange        prometheus.Gauge
	notificationsPublished *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		refreshTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_refresh_total",
				Help: "Total number of expense list refreshes",
			},
			[]string{"status"},
		),
		refreshDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracker_refresh_duration_milliseconds",
				Help:    "Expense list refresh duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		submitTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_submit_total",
				Help: "Total number of expense submits",
			},
			[]string{"status"},
		),
		submitDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracker_submit_duration_milliseconds",
				Help:    "Expense submit duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		submitRejectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "tracker_submit_rejected_total",
				Help: "Total number of submits rejected while another was in flight",
			},
		),
		deleteTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_delete_total",
				Help: "Total number of expense deletions",
			},
			[]string{"status"},
		),
		expensesInRange: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracker_expenses_in_range",
				Help: "Number of expenses in the active date range",
			},
		),
		notificationsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_notifications_published_total",
				Help: "Total number of notifications published",
			},
			[]string{"kind"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case "tracker.refresh":
		if status != "" {
			m.refreshTotal.WithLabelValues(status).Inc()
		}
	case "tracker.submit":
		if status != "" {
			m.submitTotal.WithLabelValues(status).Inc()
		}
	case "tracker.submit.rejected":
		m.submitRejectedTotal.Inc()
	case "tracker.delete":
		if status != "" {
			m.deleteTotal.WithLabelValues(status).Inc()
		}
	case "tracker.notification":
		if kind := tags["kind"]; kind != "" {
			m.notificationsPublished.WithLabelValues(kind).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "tracker.refresh":
		m.refreshDuration.Observe(float64(duration.Milliseconds()))
	case "tracker.submit":
		m.submitDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	if name == "tracker.expenses" {
		m.expensesInRange.Set(value)
	}
}
