// Package metrics provides Prometheus collectors for the client write path.
//
// # Overview
//
// Collectors are registered on the default registry at package init:
//   - batch lifecycle counters (created, completed by status, dropped)
//   - append counters (accepted records, rejections by reason)
//   - payload size and build latency histograms
//   - a throughput gauge fed by ThroughputTracker
//
// # Basic Usage
//
//	metrics.BatchesCreated.WithLabelValues("arrow_log").Inc()
//
//	timer := metrics.NewTimer("build")
//	payload, err := batch.Build()
//	metrics.BuildLatency.WithLabelValues("arrow_log").Observe(float64(timer.Stop().Nanoseconds()))
//
//	tracker := metrics.NewThroughputTracker("fluss.orders")
//	tracker.Increment(int64(n))
//	rps := tracker.GetAndReset()
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons for AppendsRejected.
const (
	ReasonClosed = "closed"
	ReasonFull   = "full"
	ReasonError  = "error"
)

// Completion statuses for BatchesCompleted.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// BatchesCreated counts write batches by kind.
	BatchesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluss_writer_batches_created_total",
			Help: "Total number of write batches created",
		},
		[]string{"kind"},
	)

	// RecordsAppended counts rows accepted into a batch.
	// Labels: table (database.table)
	RecordsAppended = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluss_writer_records_appended_total",
			Help: "Total number of records accepted into write batches",
		},
		[]string{"table"},
	)

	// AppendsRejected counts appends a batch did not accept.
	// Labels: reason (closed/full/error)
	AppendsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluss_writer_appends_rejected_total",
			Help: "Total number of appends not accepted by a write batch",
		},
		[]string{"reason"},
	)

	// BatchesCompleted counts the first completion of each batch.
	// Labels: status (success/failure)
	BatchesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fluss_writer_batches_completed_total",
			Help: "Total number of write batches completed",
		},
		[]string{"status"},
	)

	// BatchesDropped counts batches released before completion.
	BatchesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fluss_writer_batches_dropped_total",
			Help: "Total number of write batches released without a result",
		},
	)

	// BatchSizeBytes tracks the distribution of built payload sizes.
	BatchSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fluss_writer_batch_size_bytes",
			Help:    "Size of built write batch payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B .. 4MiB
		},
		[]string{"kind"},
	)

	// BuildLatency tracks payload encoding time in nanoseconds.
	BuildLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fluss_writer_build_latency_nanoseconds",
			Help: "Write batch build latency in nanoseconds",
			Buckets: []float64{
				1e4, // 10μs
				1e5, // 100μs
				1e6, // 1ms
				1e7, // 10ms
				1e8, // 100ms
				1e9, // 1s
			},
		},
		[]string{"kind"},
	)

	// Throughput tracks records per second per table.
	Throughput = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fluss_writer_throughput_records_per_second",
			Help: "Current append throughput in records per second",
		},
		[]string{"table"},
	)
)

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately.
// The name parameter is for identification in logs or metrics.
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the name the timer was created with.
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ThroughputTracker tracks records per second over time windows.
// Thread-safe for concurrent use.
type ThroughputTracker struct {
	mu        sync.Mutex
	count     int64     // Records since last reset
	lastReset time.Time // Time of last reset
	table     string
}

// NewThroughputTracker creates a tracker labelled with a table path.
func NewThroughputTracker(table string) *ThroughputTracker {
	return &ThroughputTracker{
		lastReset: time.Now(),
		table:     table,
	}
}

// Increment adds n to the record count. Safe for concurrent use.
func (t *ThroughputTracker) Increment(n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count += n
}

// GetAndReset calculates the current throughput (records/second),
// updates the Prometheus gauge, resets the counter, and returns
// the calculated throughput.
func (t *ThroughputTracker) GetAndReset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.lastReset).Seconds()
	if elapsed == 0 {
		return 0
	}

	throughput := float64(t.count) / elapsed

	t.count = 0
	t.lastReset = time.Now()

	Throughput.WithLabelValues(t.table).Set(throughput)

	return throughput
}
