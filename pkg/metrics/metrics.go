package metrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
)

const (
	Namespace = "checkpoint_indexer"

	// Status label values for success/error metrics
	StatusSuccess = "success"
	StatusError   = "error"

	Fetch = "fetch"
	Sink  = "sink"
)

// Labels holds constant labels applied to all metrics.
// These are useful for distinguishing metrics from multiple indexer instances.
type Labels struct {
	Network       string // Sui network (e.g., "testnet", "mainnet")
	Environment   string // Deployment environment (e.g., "production", "staging", "development")
	Region        string // Cloud region (e.g., "us-east-1", "eu-west-1")
	CloudProvider string // Cloud provider (e.g., "aws", "oci", "gcp")
}

// toPrometheusLabels converts Labels to prometheus.Labels map.
// Only non-empty labels are included to avoid empty label values.
func (l Labels) toPrometheusLabels() prometheus.Labels {
	labels := prometheus.Labels{}
	if l.Network != "" {
		labels["network"] = l.Network
	}
	if l.Environment != "" {
		labels["environment"] = l.Environment
	}
	if l.Region != "" {
		labels["region"] = l.Region
	}
	if l.CloudProvider != "" {
		labels["cloud_provider"] = l.CloudProvider
	}
	return labels
}

type Metrics struct {
	// Fetch window state
	next     prometheus.Gauge
	highest  prometheus.Gauge
	buffered prometheus.Gauge

	// Delivery counters
	checkpointsDelivered prometheus.Counter
	nextAdvances         prometheus.Counter
	errors               *prometheus.CounterVec

	// Fetch metrics
	fetchCalls    *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	fetchInFlight prometheus.Gauge
	fetchRetries  prometheus.Counter

	// Batch pass latency
	checkpointProcessingDuration prometheus.Histogram

	// Sink metrics
	loadBatches  *prometheus.CounterVec
	loadDuration prometheus.Histogram
	rowsInserted prometheus.Counter

	// Pipeline events by kind
	pipelineEvents *prometheus.CounterVec
}

// New creates a new Metrics instance and registers all metrics with the provided registerer.
// Returns an error if any metric registration fails.
func New(reg prometheus.Registerer) (*Metrics, error) {
	return NewWithLabels(reg, Labels{})
}

// NewWithLabels creates a new Metrics instance with constant labels applied to all metrics.
func NewWithLabels(reg prometheus.Registerer, labels Labels) (*Metrics, error) {
	promLabels := labels.toPrometheusLabels()
	if len(promLabels) > 0 {
		reg = prometheus.WrapRegistererWith(promLabels, reg)
	}

	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) (*Metrics, error) {
	latencyBuckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

	m := &Metrics{
		next: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "next_sequence",
			Help:      "Next checkpoint sequence number to deliver (window lower bound)",
		}),
		highest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "highest_dispatched_sequence",
			Help:      "Highest checkpoint sequence number handed to a fetcher",
		}),
		buffered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "buffered_checkpoints",
			Help:      "Fetched checkpoints waiting for an earlier sequence before delivery",
		}),
		checkpointsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "checkpoints_delivered_total",
			Help:      "Total checkpoints delivered in order to the handler",
		}),
		nextAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "next_advances_total",
			Help:      "Total number of times the delivery watermark moved forward",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total errors by type",
		}, []string{"type"}),
		fetchCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Fetch,
			Name:      "calls_total",
			Help:      "Total checkpoint fetch attempts by status",
		}, []string{"status"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Fetch,
			Name:      "duration_seconds",
			Help:      "Checkpoint fetch duration in seconds",
			Buckets:   latencyBuckets,
		}),
		fetchInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: Fetch,
			Name:      "in_flight",
			Help:      "Number of checkpoint fetches currently in progress",
		}),
		fetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Fetch,
			Name:      "retries_total",
			Help:      "Total fetch retries after a failed attempt",
		}),
		checkpointProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "checkpoint_processing_duration_seconds",
			Help:      "Time to process a single staged checkpoint in a batch pass",
			Buckets:   latencyBuckets,
		}),
		loadBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Sink,
			Name:      "batches_total",
			Help:      "Total load batches by status",
		}, []string{"status"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: Sink,
			Name:      "batch_duration_seconds",
			Help:      "Time to load one batch of matched records",
			Buckets:   latencyBuckets,
		}),
		rowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: Sink,
			Name:      "rows_inserted_total",
			Help:      "Total rows inserted into the sink",
		}),
		pipelineEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_total",
			Help:      "Total pipeline events by kind",
		}, []string{"kind"}),
	}

	err := errors.Join(
		reg.Register(m.next),
		reg.Register(m.highest),
		reg.Register(m.buffered),
		reg.Register(m.checkpointsDelivered),
		reg.Register(m.nextAdvances),
		reg.Register(m.errors),
		reg.Register(m.fetchCalls),
		reg.Register(m.fetchDuration),
		reg.Register(m.fetchInFlight),
		reg.Register(m.fetchRetries),
		reg.Register(m.checkpointProcessingDuration),
		reg.Register(m.loadBatches),
		reg.Register(m.loadDuration),
		reg.Register(m.rowsInserted),
		reg.Register(m.pipelineEvents),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// Error type constants for errors outside the fetch path (fetch errors are tracked via fetchCalls{status="error"}).
const (
	ErrTypeCheckpointSkipped = "checkpoint_skipped"
	ErrTypeRecordRejected    = "record_rejected"
	ErrTypeBatchFailed       = "batch_failed"
)

// IncError increments the error counter for the given error type.
func (m *Metrics) IncError(errType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(errType).Inc()
}

// CommitCheckpoints records that count checkpoints were delivered and the window moved.
func (m *Metrics) CommitCheckpoints(count uint64, next, highest uint64, buffered int) {
	if m == nil {
		return
	}
	m.nextAdvances.Inc()
	m.checkpointsDelivered.Add(float64(count))
	m.UpdateWindowMetrics(next, highest, buffered)
}

// UpdateWindowMetrics sets the window gauges.
func (m *Metrics) UpdateWindowMetrics(next, highest uint64, buffered int) {
	if m == nil {
		return
	}
	m.next.Set(float64(next))
	m.highest.Set(float64(highest))
	m.buffered.Set(float64(buffered))
}

func (m *Metrics) IncFetchInFlight() {
	if m == nil {
		return
	}
	m.fetchInFlight.Inc()
}

func (m *Metrics) DecFetchInFlight() {
	if m == nil {
		return
	}
	m.fetchInFlight.Dec()
}

// RecordFetch records one fetch attempt.
func (m *Metrics) RecordFetch(err error, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.fetchCalls.WithLabelValues(status).Inc()
	m.fetchDuration.Observe(durationSeconds)
}

func (m *Metrics) IncFetchRetry() {
	if m == nil {
		return
	}
	m.fetchRetries.Inc()
}

func (m *Metrics) ObserveCheckpointProcessingDuration(seconds float64) {
	if m == nil {
		return
	}
	m.checkpointProcessingDuration.Observe(seconds)
}

// RecordLoad records one sink batch.
func (m *Metrics) RecordLoad(err error, rows int64, durationSeconds float64) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.loadBatches.WithLabelValues(status).Inc()
	m.loadDuration.Observe(durationSeconds)
	m.rowsInserted.Add(float64(rows))
}

// Observe counts pipeline events by kind, making Metrics an events.Observer.
func (m *Metrics) Observe(_ context.Context, e events.Event) {
	if m == nil {
		return
	}
	m.pipelineEvents.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case events.CheckpointSkipped:
		m.IncError(ErrTypeCheckpointSkipped)
	case events.RecordRejected:
		m.IncError(ErrTypeRecordRejected)
	case events.BatchFailed:
		m.IncError(ErrTypeBatchFailed)
	}
}
