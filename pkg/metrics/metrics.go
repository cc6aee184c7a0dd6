// Package metrics exposes Prometheus counters for the finance bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total number of inbound messages labeled by classified kind and status",
		},
		[]string{"kind", "status"},
	)
	messageDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "message_duration_seconds",
			Help:    "End to end processing duration of inbound messages in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	ledgerOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Total number of ledger operations labeled by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	declinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_declines_total",
			Help: "Total number of declined ledger operations labeled by reason",
		},
		[]string{"reason"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
	duplicatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_messages_total",
			Help: "Total number of messages skipped by the idempotency layer",
		},
	)
	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_messages_total",
			Help: "Total number of messages rejected by the rate limiter",
		},
	)
	reminderRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reminder_runs_total",
			Help: "Total number of low balance sweeps labeled by status",
		},
		[]string{"status"},
	)
	reminderNoticesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_notices_total",
			Help: "Total number of low balance warnings sent",
		},
	)
)

// RecordMessage increments the inbound message counter and records duration.
func RecordMessage(kind, status string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	messagesTotal.WithLabelValues(kind, status).Inc()
	messageDurationSeconds.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordOperation counts a ledger operation with its outcome.
func RecordOperation(operation, outcome string) {
	if operation == "" {
		operation = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}

	ledgerOperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordDecline counts a declined ledger operation by reason.
func RecordDecline(reason string) {
	if reason == "" {
		reason = "unknown"
	}

	declinesTotal.WithLabelValues(reason).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordDuplicate counts a message dropped as a duplicate.
func RecordDuplicate() {
	duplicatesTotal.Inc()
}

// RecordRateLimited counts a message rejected by the rate limiter.
func RecordRateLimited() {
	rateLimitedTotal.Inc()
}

// RecordReminderRun counts one low balance sweep.
func RecordReminderRun(status string) {
	if status == "" {
		status = "unknown"
	}

	reminderRunsTotal.WithLabelValues(status).Inc()
}

// RecordReminderNotice counts one warning message sent to a user.
func RecordReminderNotice() {
	reminderNoticesTotal.Inc()
}
