// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_http_requests_total",
			Help: "Total number of HTTP requests served per route.",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smart_energy_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds per route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	HTTPRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_http_retries_total",
			Help: "Requests replayed after a 5xx response.",
		},
		[]string{"method"},
	)

	NotificationsDeliveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_notifications_delivered_total",
			Help: "Notifications stored in history per kind and channel.",
		},
		[]string{"kind", "channel"},
	)

	NotificationPushFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_notification_push_failures_total",
			Help: "Push deliveries that failed per publisher.",
		},
		[]string{"publisher"},
	)

	StatementExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_statement_exports_total",
			Help: "Bill statement exports per outcome.",
		},
		[]string{"outcome"},
	)
)

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smart_energy_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job.",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smart_energy_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job.",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smart_energy_job_failures_total",
			Help: "Total number of failed executions per job.",
		},
		[]string{"job"},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(route, method string, status int, dur time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	HTTPRequestDurationSeconds.WithLabelValues(route, method).Observe(dur.Seconds())
}

// UpdateJobMetrics records the outcome of a scheduled job run.
func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
