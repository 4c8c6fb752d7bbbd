package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the core validation and diff metrics.
type Metrics struct {
	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	ValidationIssues   *prometheus.CounterVec

	// Diff metrics
	DiffBatchesTotal       *prometheus.CounterVec
	DiffOperationsPerBatch prometheus.Histogram
}

// NewMetrics creates a new Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowcore",
				Subsystem: "validation",
				Name:      "runs_total",
				Help:      "Total number of workflow validation passes",
			},
			[]string{"profile", "status"},
		),

		ValidationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "flowcore",
				Subsystem: "validation",
				Name:      "duration_seconds",
				Help:      "Workflow validation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"profile"},
		),

		ValidationIssues: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowcore",
				Subsystem: "validation",
				Name:      "issues_total",
				Help:      "Total number of validation issues reported",
			},
			[]string{"severity", "type"},
		),

		DiffBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "flowcore",
				Subsystem: "diff",
				Name:      "batches_total",
				Help:      "Total number of diff batches applied",
			},
			[]string{"status"},
		),

		DiffOperationsPerBatch: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "flowcore",
				Subsystem: "diff",
				Name:      "operations_per_batch",
				Help:      "Number of operations per diff batch",
				Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
	}
}

// RecordValidation increments the validation counter. Status is "valid" or
// "invalid".
func (c *Metrics) RecordValidation(profile, status string) {
	c.ValidationsTotal.WithLabelValues(profile, status).Inc()
}

// RecordValidationDuration records how long a validation pass took
func (c *Metrics) RecordValidationDuration(profile string, duration time.Duration) {
	c.ValidationDuration.WithLabelValues(profile).Observe(duration.Seconds())
}

// RecordIssue increments the issue counter for one reported issue
func (c *Metrics) RecordIssue(severity, issueType string) {
	c.ValidationIssues.WithLabelValues(severity, issueType).Inc()
}

// RecordDiffBatch records one batch application. Status is "applied",
// "rejected", or "dry_run".
func (c *Metrics) RecordDiffBatch(status string, operations int) {
	c.DiffBatchesTotal.WithLabelValues(status).Inc()
	c.DiffOperationsPerBatch.Observe(float64(operations))
}
