// Package write implements the client-side write batch: the accumulator that
// collects rows for one table bucket, encodes them, and fans the server's
// acknowledgement out to every caller that appended a row.
package write

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ajitpratap0/fluss-go/pkg/broadcast"
	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/logger"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/metrics"
	"github.com/ajitpratap0/fluss-go/pkg/record"
	"github.com/ajitpratap0/fluss-go/pkg/row"
)

// BatchKind identifies the encoding variant of a WriteBatch.
type BatchKind int

const (
	// KindArrowLog encodes rows as an Arrow log record batch.
	KindArrowLog BatchKind = iota
)

func (k BatchKind) String() string {
	switch k {
	case KindArrowLog:
		return "arrow_log"
	default:
		return "unknown"
	}
}

// RecordsBuilder is the encoder a WriteBatch appends to.
// *record.ArrowLogRecordsBuilder is the production implementation.
type RecordsBuilder interface {
	Append(r row.InternalRow) error
	IsFull() bool
	IsClosed() bool
	Close()
	Build() ([]byte, error)
	EstimatedSizeBytes() int64
	RecordCount() int
	Release()
}

var _ RecordsBuilder = (*record.ArrowLogRecordsBuilder)(nil)

// Option configures a WriteBatch.
type Option func(*batchOptions)

type batchOptions struct {
	logger     *zap.Logger
	recordOpts record.Options
}

// WithLogger sets the logger for the batch and its broadcast.
func WithLogger(l *zap.Logger) Option {
	return func(o *batchOptions) { o.logger = l }
}

// WithRecordOptions sets the encoder limits for NewArrowLogWriteBatch.
func WithRecordOptions(opts record.Options) Option {
	return func(o *batchOptions) { o.recordOpts = opts }
}

func applyOptions(opts []Option) batchOptions {
	o := batchOptions{recordOpts: record.DefaultOptions()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WriteBatch accumulates rows for one table bucket. Append, Close and
// Drained are called by a single owner. Complete and Abort may be called
// from any goroutine once the batch is closed; on an open batch they must
// come from the owner.
type WriteBatch struct {
	batchID   int64
	kind      BatchKind
	tablePath metadata.TablePath
	bucketID  metadata.BucketID
	createMs  int64

	builder RecordsBuilder
	result  *broadcast.Once[error]

	closed    atomic.Bool
	completed atomic.Bool
	drainedMs atomic.Int64

	logger *zap.Logger
}

// NewArrowLogWriteBatch creates a batch that encodes rows of rowType as an
// Arrow log record batch.
func NewArrowLogWriteBatch(batchID int64, tablePath metadata.TablePath, schemaID int32, rowType metadata.RowType,
	bucketID metadata.BucketID, createMs int64, opts ...Option) (*WriteBatch, error) {
	o := applyOptions(opts)
	builder, err := record.NewArrowLogRecordsBuilder(schemaID, rowType, o.recordOpts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeValidation, "failed to create arrow log records builder").
			WithDetail("table", tablePath.String())
	}
	return NewWriteBatch(batchID, KindArrowLog, tablePath, bucketID, createMs, builder, opts...), nil
}

// NewWriteBatch creates a batch over an arbitrary encoder. The batch takes
// ownership of builder.
func NewWriteBatch(batchID int64, kind BatchKind, tablePath metadata.TablePath, bucketID metadata.BucketID,
	createMs int64, builder RecordsBuilder, opts ...Option) *WriteBatch {
	o := applyOptions(opts)
	base := o.logger
	if base == nil {
		base = logger.Get()
	}
	base = base.With(
		zap.Int64("batch_id", batchID),
		zap.String("table", tablePath.String()),
		zap.Int32("bucket", bucketID),
	)
	l := logger.Component(base, "write_batch")

	b := &WriteBatch{
		batchID:   batchID,
		kind:      kind,
		tablePath: tablePath,
		bucketID:  bucketID,
		createMs:  createMs,
		builder:   builder,
		result:    broadcast.New[error](broadcast.WithLogger(base), broadcast.WithOnDrop(metrics.BatchesDropped.Inc)),
		logger:    l,
	}
	b.drainedMs.Store(-1)
	metrics.BatchesCreated.WithLabelValues(kind.String()).Inc()
	return b
}

// TryAppend appends rec's row. It returns (nil, nil) when the batch is closed,
// completed or the encoder is full; the caller should open a new batch.
// Encoder errors are returned and leave the batch unchanged.
func (b *WriteBatch) TryAppend(rec *WriteRecord) (*ResultHandle, error) {
	if b.closed.Load() || b.completed.Load() || b.builder.IsClosed() {
		metrics.AppendsRejected.WithLabelValues(metrics.ReasonClosed).Inc()
		return nil, nil
	}
	if b.builder.IsFull() {
		metrics.AppendsRejected.WithLabelValues(metrics.ReasonFull).Inc()
		return nil, nil
	}
	if rec == nil || rec.Row == nil {
		return nil, errors.New(errors.ErrorTypeValidation, "write record has no row")
	}
	if err := b.builder.Append(rec.Row); err != nil {
		metrics.AppendsRejected.WithLabelValues(metrics.ReasonError).Inc()
		return nil, err
	}
	metrics.RecordsAppended.WithLabelValues(b.tablePath.String()).Inc()
	return newResultHandle(b.result.Receiver()), nil
}

// Close stops accepting rows. Idempotent.
func (b *WriteBatch) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.builder.Close()
	b.logger.Debug("write batch closed",
		zap.Int("records", b.builder.RecordCount()),
		zap.Int64("estimated_bytes", b.builder.EstimatedSizeBytes()))
}

// IsClosed reports whether the batch has stopped accepting rows.
func (b *WriteBatch) IsClosed() bool {
	return b.closed.Load()
}

// WaitedTimeMs is the time since creation, never negative.
func (b *WriteBatch) WaitedTimeMs(nowMs int64) int64 {
	return max(0, nowMs-b.createMs)
}

// Drained records that the batch left the accumulator at nowMs. The mark
// only moves forward.
func (b *WriteBatch) Drained(nowMs int64) {
	for {
		cur := b.drainedMs.Load()
		if nowMs <= cur || b.drainedMs.CompareAndSwap(cur, nowMs) {
			return
		}
	}
}

// DrainedMs returns the drained mark, or -1 if never drained.
func (b *WriteBatch) DrainedMs() int64 {
	return b.drainedMs.Load()
}

// Build encodes the batch. The batch must be closed.
func (b *WriteBatch) Build() ([]byte, error) {
	if !b.IsClosed() {
		return nil, errors.New(errors.ErrorTypeState, "build before close").
			WithDetail("batch_id", b.batchID)
	}
	timer := metrics.NewTimer("build")
	payload, err := b.builder.Build()
	if err != nil {
		return nil, err
	}
	metrics.BuildLatency.WithLabelValues(b.kind.String()).Observe(float64(timer.Stop().Nanoseconds()))
	metrics.BatchSizeBytes.WithLabelValues(b.kind.String()).Observe(float64(len(payload)))
	return payload, nil
}

// Complete delivers the outcome to every handle; nil means success. Only the
// first call has an effect and reports true. An open batch is closed first so
// no row can join after its outcome is known.
func (b *WriteBatch) Complete(err error) bool {
	if !b.completed.CompareAndSwap(false, true) {
		return false
	}
	b.Close()
	if !b.result.TryBroadcast(err) {
		// released first; handles already resolved to ErrDropped
		return false
	}
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailure
	}
	metrics.BatchesCompleted.WithLabelValues(status).Inc()
	b.logger.Debug("write batch completed", zap.String("status", status), zap.Error(err))
	return true
}

// IsCompleted reports whether Complete has been called.
func (b *WriteBatch) IsCompleted() bool {
	return b.completed.Load()
}

// Abort closes the batch and completes it with err.
func (b *WriteBatch) Abort(err error) bool {
	b.Close()
	return b.Complete(err)
}

// Release frees encoder memory. Handles of a batch that was never completed
// resolve to broadcast.ErrDropped.
func (b *WriteBatch) Release() {
	b.closed.Store(true)
	b.result.Close()
	b.builder.Release()
}

// EstimatedSizeBytes is the encoder's current size accounting.
func (b *WriteBatch) EstimatedSizeBytes() int64 {
	return b.builder.EstimatedSizeBytes()
}

// BatchID returns the batch identifier.
func (b *WriteBatch) BatchID() int64 { return b.batchID }

// Kind returns the encoder variant.
func (b *WriteBatch) Kind() BatchKind { return b.kind }

// TablePath returns the destination table.
func (b *WriteBatch) TablePath() metadata.TablePath { return b.tablePath }

// BucketID returns the destination bucket.
func (b *WriteBatch) BucketID() metadata.BucketID { return b.bucketID }

// CreateMs returns the creation time in epoch milliseconds.
func (b *WriteBatch) CreateMs() int64 { return b.createMs }

// RecordCount returns the number of rows appended so far.
func (b *WriteBatch) RecordCount() int { return b.builder.RecordCount() }
