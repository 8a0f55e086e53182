package record

import (
	"bytes"
	"io"
	"math"
	"unicode/utf8"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/row"
)

// ArrowLogRecordsBuilder accumulates rows into Arrow column builders and
// encodes them as a single log record batch. It is not safe for concurrent
// use.
type ArrowLogRecordsBuilder struct {
	schemaID int16
	rowType  metadata.RowType
	schema   *arrow.Schema
	opts     Options

	alloc   *memory.CheckedAllocator
	builder *array.RecordBuilder

	count    int
	closed   bool
	released bool
	built    []byte
	// buildErr is sticky: the column builders are reset by a failed build
	buildErr error

	encode func(w io.Writer, rec arrow.Record) error
}

// NewArrowLogRecordsBuilder creates an encoder for rows of rowType.
func NewArrowLogRecordsBuilder(schemaID int32, rowType metadata.RowType, opts Options) (*ArrowLogRecordsBuilder, error) {
	if schemaID < 0 || schemaID > math.MaxInt16 {
		return nil, errors.Newf(errors.ErrorTypeValidation, "schema id %d out of range", schemaID)
	}
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}
	schema, err := rowType.ToArrowSchema()
	if err != nil {
		return nil, err
	}

	alloc := memory.NewCheckedAllocator(memory.NewGoAllocator())
	b := &ArrowLogRecordsBuilder{
		schemaID: int16(schemaID),
		rowType:  rowType,
		schema:   schema,
		opts:     opts,
		alloc:    alloc,
		builder:  array.NewRecordBuilder(alloc, schema),
	}
	b.encode = b.writeStream
	return b, nil
}

// Schema returns the Arrow schema rows are encoded with.
func (b *ArrowLogRecordsBuilder) Schema() *arrow.Schema { return b.schema }

// SchemaID returns the schema id stamped into the header.
func (b *ArrowLogRecordsBuilder) SchemaID() int16 { return b.schemaID }

// Append validates the whole row and then appends every field. A failed
// append leaves the builders untouched.
func (b *ArrowLogRecordsBuilder) Append(r row.InternalRow) error {
	if b.closed {
		return errors.New(errors.ErrorTypeState, "append to closed arrow log records builder")
	}
	datums, err := b.validate(r)
	if err != nil {
		return err
	}
	for i, d := range datums {
		if err := row.AppendTo(d, b.builder.Field(i)); err != nil {
			// unreachable after validate; the builders are now inconsistent
			return errors.Wrap(err, errors.ErrorTypeInternal, "append failed after validation")
		}
	}
	b.count++
	return nil
}

func (b *ArrowLogRecordsBuilder) validate(r row.InternalRow) ([]row.Datum, error) {
	fields := b.rowType.Fields
	if r.FieldCount() != len(fields) {
		return nil, errors.New(errors.ErrorTypeValidation, "row field count does not match schema").
			WithDetail("expected", len(fields)).
			WithDetail("actual", r.FieldCount())
	}

	datums := make([]row.Datum, len(fields))
	for i, f := range fields {
		d, err := r.GetDatum(i)
		if err != nil {
			return nil, err
		}
		if d.IsNull() {
			if !f.Type.Nullable {
				return nil, errors.Newf(errors.ErrorTypeValidation, "null value for non-null field %s", f.Name).
					WithDetail("position", i)
			}
			datums[i] = d
			continue
		}
		if err := row.CheckAppendable(d, b.schema.Field(i).Type); err != nil {
			var se *errors.Error
			if errors.As(err, &se) {
				se.WithDetail("field", f.Name)
			}
			return nil, err
		}
		if f.Type.Root == metadata.TypeChar {
			s, _ := d.AsString()
			if n := utf8.RuneCountInString(s); n > f.Type.Length {
				return nil, errors.Newf(errors.ErrorTypeValidation, "value of %d characters exceeds %s", n, f.Type).
					WithDetail("field", f.Name)
			}
		}
		datums[i] = d
	}
	return datums, nil
}

// IsFull reports whether the encoder reached its row cap or byte budget. An
// empty encoder is never full so that any single row fits.
func (b *ArrowLogRecordsBuilder) IsFull() bool {
	if b.count == 0 {
		return false
	}
	if b.opts.MaxRecords > 0 && b.count >= b.opts.MaxRecords {
		return true
	}
	return b.EstimatedSizeBytes() >= b.opts.WriteLimitBytes
}

// IsClosed reports whether Close or Release was called.
func (b *ArrowLogRecordsBuilder) IsClosed() bool { return b.closed }

// Close stops accepting rows. Idempotent.
func (b *ArrowLogRecordsBuilder) Close() { b.closed = true }

// RecordCount returns the number of appended rows.
func (b *ArrowLogRecordsBuilder) RecordCount() int { return b.count }

// EstimatedSizeBytes is the header plus the memory currently held by the
// column builders. Once built it is the exact payload size.
func (b *ArrowLogRecordsBuilder) EstimatedSizeBytes() int64 {
	if b.built != nil {
		return int64(len(b.built))
	}
	return HeaderSize + int64(b.alloc.CurrentAlloc())
}

// Build encodes the accumulated rows. It requires Close and returns the same
// bytes on every call. A failed build consumes the rows, so every later call
// returns the same error.
func (b *ArrowLogRecordsBuilder) Build() ([]byte, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if b.released {
		return nil, errors.New(errors.ErrorTypeState, "build after release")
	}
	if !b.closed {
		return nil, errors.New(errors.ErrorTypeState, "build before close").
			WithDetail("record_count", b.count)
	}
	if b.built != nil {
		return b.built, nil
	}

	rec := b.builder.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	buf.Write(make([]byte, HeaderSize))
	if err := b.encode(&buf, rec); err != nil {
		b.buildErr = errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode arrow log record batch").
			WithDetail("record_count", b.count)
		return nil, b.buildErr
	}

	payload := buf.Bytes()
	writeHeader(payload, header{
		schemaID:      b.schemaID,
		attributes:    appendOnlyFlag,
		recordCount:   int32(b.count),
		writerID:      NoWriterID,
		batchSequence: NoBatchSequence,
	})
	b.built = payload
	return payload, nil
}

// writeStream writes rec as a single-batch Arrow IPC stream.
func (b *ArrowLogRecordsBuilder) writeStream(w io.Writer, rec arrow.Record) error {
	opts := append([]ipc.Option{ipc.WithSchema(b.schema)}, b.opts.Compression.ipcOptions()...)
	iw := ipc.NewWriter(w, opts...)
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return err
	}
	return iw.Close()
}

// Release frees the column builders and the cached payload. Idempotent.
func (b *ArrowLogRecordsBuilder) Release() {
	if b.released {
		return
	}
	b.released = true
	b.closed = true
	b.builder.Release()
	b.built = nil
}

// AllocatedBytes reports memory still held by the column builders.
func (b *ArrowLogRecordsBuilder) AllocatedBytes() int {
	return b.alloc.CurrentAlloc()
}
