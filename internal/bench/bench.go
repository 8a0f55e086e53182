// Package bench drives the write path end to end: it appends generated rows
// into Arrow log write batches, seals them when full or lingering, decodes
// every payload back and completes the batches the way a send pipeline would.
package bench

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ajitpratap0/fluss-go/pkg/client/write"
	"github.com/ajitpratap0/fluss-go/pkg/config"
	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/json"
	"github.com/ajitpratap0/fluss-go/pkg/logger"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/metrics"
	"github.com/ajitpratap0/fluss-go/pkg/observability"
	"github.com/ajitpratap0/fluss-go/pkg/record"
	"github.com/ajitpratap0/fluss-go/pkg/row"
)

// ErrSimulatedFailure completes batches selected by Options.FailEvery.
var ErrSimulatedFailure = stderrors.New("bench: simulated write failure")

const (
	schemaID    = 1
	baseTimeMs  = 1_700_000_000_000
	baseDateDay = 19723 // 2024-01-01
)

// Options configures a run.
type Options struct {
	Table  metadata.TablePath
	Bucket metadata.BucketID
	Rows   int
	Writer config.WriterConfig

	// FailEvery completes every Nth batch with ErrSimulatedFailure; 0 never
	FailEvery int

	// Verify decodes every payload and compares it with the generated rows
	Verify bool

	// Dump, if set, receives every decoded row as line-delimited JSON
	Dump io.Writer

	Logger *zap.Logger
	Now    func() time.Time
}

// Report summarises a run.
type Report struct {
	Table            string  `json:"table"`
	Compression      string  `json:"compression"`
	Batches          int     `json:"batches"`
	Records          int     `json:"records"`
	FailedRecords    int     `json:"failed_records"`
	PayloadBytes     int64   `json:"payload_bytes"`
	AvgBatchBytes    int64   `json:"avg_batch_bytes"`
	MaxWaitedMs      int64   `json:"max_waited_ms"`
	DurationMs       int64   `json:"duration_ms"`
	RecordsPerSecond float64 `json:"records_per_second"`
}

// RowType is the schema of generated rows.
func RowType() metadata.RowType {
	return metadata.NewRowType(
		metadata.Field("id", metadata.BigInt().NotNull()),
		metadata.Field("name", metadata.String()),
		metadata.Field("amount", metadata.Decimal(12, 2)),
		metadata.Field("created_at", metadata.TimestampLtz()),
		metadata.Field("day", metadata.Date()),
		metadata.Field("payload", metadata.Bytes()),
	)
}

// GenerateRow returns the deterministic i-th row.
func GenerateRow(i int) *row.GenericRow {
	name := row.Null()
	if i%10 != 0 {
		name = row.StringDatum(fmt.Sprintf("user-%d", i%97))
	}
	return row.GenericRowOf(
		row.Int64Datum(int64(i)),
		name,
		row.DecimalDatum(decimal.New(int64(i*37%100000), -2)),
		row.TimestampLtzDatum(row.TimestampLtz(baseTimeMs+int64(i))),
		row.DateDatum(row.Date(baseDateDay+i%365)),
		row.BlobDatum(row.NewBlob([]byte{byte(i), byte(i >> 8), byte(i >> 16)})),
	)
}

type runner struct {
	opts       Options
	recordOpts record.Options
	rowType    metadata.RowType
	logger     *zap.Logger
	tracker    *metrics.ThroughputTracker
	report     Report

	batchID int64
	current *write.WriteBatch
	first   int // index of the first row of current
}

func (r *runner) nowMs() int64 {
	return r.opts.Now().UnixMilli()
}

// Run appends opts.Rows rows and waits for every handle.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Rows < 0 {
		return nil, errors.New(errors.ErrorTypeValidation, "rows must not be negative")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	recordOpts, err := opts.Writer.RecordOptions()
	if err != nil {
		return nil, err
	}

	r := &runner{
		opts:       opts,
		recordOpts: recordOpts,
		rowType:    RowType(),
		logger:     logger.Component(opts.Logger, "bench"),
		tracker:    metrics.NewThroughputTracker(opts.Table.String()),
		report: Report{
			Table:       opts.Table.String(),
			Compression: string(recordOpts.Compression),
		},
	}

	start := time.Now()
	handles, err := r.appendAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, h := range handles {
		if err := h.Wait(ctx); err != nil {
			if !stderrors.Is(err, ErrSimulatedFailure) {
				return nil, err
			}
			r.report.FailedRecords++
		}
	}

	elapsed := time.Since(start)
	r.report.Records = len(handles)
	r.report.DurationMs = elapsed.Milliseconds()
	r.report.RecordsPerSecond = r.tracker.GetAndReset()
	if r.report.Batches > 0 {
		r.report.AvgBatchBytes = r.report.PayloadBytes / int64(r.report.Batches)
	}

	r.logger.Info("bench finished",
		zap.String("table", r.report.Table),
		zap.Int("batches", r.report.Batches),
		zap.Int("records", r.report.Records),
		zap.Int("failed_records", r.report.FailedRecords),
		zap.Duration("elapsed", elapsed))
	return &r.report, nil
}

func (r *runner) appendAll(ctx context.Context) ([]*write.ResultHandle, error) {
	handles := make([]*write.ResultHandle, 0, r.opts.Rows)
	lingerMs := r.opts.Writer.BatchTimeout.Milliseconds()

	for i := 0; i < r.opts.Rows; i++ {
		if err := ctx.Err(); err != nil {
			r.abort(err)
			return nil, err
		}
		if r.current == nil {
			if err := r.open(i); err != nil {
				return nil, err
			}
		}

		rec := write.NewWriteRecord(r.opts.Table, GenerateRow(i))
		h, err := r.current.TryAppend(rec)
		if err != nil {
			r.abort(err)
			return nil, err
		}
		if h == nil {
			if err := r.seal(ctx); err != nil {
				return nil, err
			}
			if err := r.open(i); err != nil {
				return nil, err
			}
			if h, err = r.current.TryAppend(rec); err != nil {
				r.abort(err)
				return nil, err
			}
			if h == nil {
				err := errors.New(errors.ErrorTypeInternal, "row rejected by an empty batch").
					WithDetail("row", i)
				r.abort(err)
				return nil, err
			}
		}
		handles = append(handles, h)

		if lingerMs > 0 && r.current.WaitedTimeMs(r.nowMs()) >= lingerMs {
			if err := r.seal(ctx); err != nil {
				return nil, err
			}
		}
	}

	if r.current != nil {
		if err := r.seal(ctx); err != nil {
			return nil, err
		}
	}
	return handles, nil
}

func (r *runner) open(first int) error {
	r.batchID++
	b, err := write.NewArrowLogWriteBatch(r.batchID, r.opts.Table, schemaID, r.rowType, r.opts.Bucket, r.nowMs(),
		write.WithLogger(r.opts.Logger), write.WithRecordOptions(r.recordOpts))
	if err != nil {
		return err
	}
	r.current = b
	r.first = first
	return nil
}

func (r *runner) abort(err error) {
	if r.current == nil {
		return
	}
	r.current.Abort(err)
	r.current.Release()
	r.current = nil
}

// seal closes, builds, verifies, completes and releases the current batch.
func (r *runner) seal(ctx context.Context) error {
	b := r.current
	r.current = nil
	defer b.Release()

	return observability.Trace(ctx, "write_batch.send", func(ctx context.Context, span *observability.Span) error {
		now := r.nowMs()
		b.Close()
		b.Drained(now)

		span.SetAttribute("batch.id", b.BatchID())
		span.SetAttribute("batch.bucket", b.BucketID())
		span.SetAttribute("batch.records", b.RecordCount())
		span.SetAttribute("table", b.TablePath())

		payload, err := b.Build()
		if err != nil {
			b.Abort(err)
			return err
		}
		span.SetAttribute("batch.bytes", len(payload))

		if err := r.check(payload, b.RecordCount()); err != nil {
			b.Abort(err)
			return err
		}

		var result error
		if r.opts.FailEvery > 0 && b.BatchID()%int64(r.opts.FailEvery) == 0 {
			result = ErrSimulatedFailure
		}
		b.Complete(result)

		r.report.Batches++
		r.report.PayloadBytes += int64(len(payload))
		r.report.MaxWaitedMs = max(r.report.MaxWaitedMs, b.WaitedTimeMs(now))
		r.tracker.Increment(int64(b.RecordCount()))
		return nil
	})
}

func (r *runner) check(payload []byte, count int) error {
	batch, err := record.ReadLogRecordBatch(payload)
	if err != nil {
		return err
	}
	if int(batch.RecordCount()) != count {
		return errors.New(errors.ErrorTypeData, "payload record count does not match batch").
			WithDetail("payload", batch.RecordCount()).
			WithDetail("batch", count)
	}
	if !r.opts.Verify && r.opts.Dump == nil {
		return nil
	}

	rows, err := batch.Rows(r.rowType)
	if err != nil {
		return err
	}
	if r.opts.Verify {
		for j, got := range rows {
			if want := GenerateRow(r.first + j); !want.Equal(got) {
				return errors.Newf(errors.ErrorTypeData, "decoded row %d differs: want %s got %s", r.first+j, want, got)
			}
		}
	}
	if r.opts.Dump != nil {
		lines, err := json.MarshalLines(rows)
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode rows")
		}
		if _, err := r.opts.Dump.Write(lines); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write rows")
		}
	}
	return nil
}
