package record

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/row"
)

const (
	baseOffsetOffset      = 0
	lengthOffset          = 8
	magicOffset           = 12
	commitTimestampOffset = 13
	crcOffset             = 21
	schemaIDOffset        = 25
	attributesOffset      = 27
	lastOffsetDeltaOffset = 28
	writerIDOffset        = 32
	batchSequenceOffset   = 40
	recordCountOffset     = 44

	// HeaderSize is the fixed size of the log batch header.
	HeaderSize = 48

	// LogMagicValueV0 is the only supported header version.
	LogMagicValueV0 int8 = 0

	// NoWriterID marks a batch written without idempotence.
	NoWriterID int64 = -1
	// NoBatchSequence marks a batch written without idempotence.
	NoBatchSequence int32 = -1

	appendOnlyFlag int8 = 0x01
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

type header struct {
	schemaID      int16
	attributes    int8
	recordCount   int32
	writerID      int64
	batchSequence int32
}

// writeHeader fills buf[:HeaderSize] and stamps the checksum. The IPC stream
// must already follow the header.
func writeHeader(buf []byte, h header) {
	be := binary.BigEndian
	be.PutUint64(buf[baseOffsetOffset:], 0)
	be.PutUint32(buf[lengthOffset:], uint32(len(buf)-magicOffset))
	buf[magicOffset] = byte(LogMagicValueV0)
	be.PutUint64(buf[commitTimestampOffset:], 0)
	be.PutUint16(buf[schemaIDOffset:], uint16(h.schemaID))
	buf[attributesOffset] = byte(h.attributes)
	be.PutUint32(buf[lastOffsetDeltaOffset:], uint32(h.recordCount-1))
	be.PutUint64(buf[writerIDOffset:], uint64(h.writerID))
	be.PutUint32(buf[batchSequenceOffset:], uint32(h.batchSequence))
	be.PutUint32(buf[recordCountOffset:], uint32(h.recordCount))
	be.PutUint32(buf[crcOffset:], crc32.Checksum(buf[schemaIDOffset:], castagnoli))
}

// LogRecordBatch is a read-only view over an encoded log batch.
type LogRecordBatch struct {
	data []byte
}

// ReadLogRecordBatch validates the header of data and returns a view over it.
// The view aliases data.
func ReadLogRecordBatch(data []byte) (*LogRecordBatch, error) {
	if len(data) < HeaderSize {
		return nil, errors.Newf(errors.ErrorTypeData, "log batch too short: %d bytes", len(data)).
			WithDetail("min_size", HeaderSize)
	}
	b := &LogRecordBatch{data: data}
	if m := b.Magic(); m != LogMagicValueV0 {
		return nil, errors.Newf(errors.ErrorTypeData, "unsupported log batch magic %d", m)
	}
	if got, want := int(b.length())+magicOffset, len(data); got != want {
		return nil, errors.New(errors.ErrorTypeData, "log batch length does not match payload").
			WithDetail("header_size", got).
			WithDetail("payload_size", want)
	}
	if !b.IsValid() {
		return nil, errors.New(errors.ErrorTypeData, "log batch checksum mismatch").
			WithDetail("stored", b.Checksum()).
			WithDetail("computed", b.computeChecksum())
	}
	if b.RecordCount() < 0 {
		return nil, errors.Newf(errors.ErrorTypeData, "negative record count %d", b.RecordCount())
	}
	return b, nil
}

func (b *LogRecordBatch) length() int32 {
	return int32(binary.BigEndian.Uint32(b.data[lengthOffset:]))
}

func (b *LogRecordBatch) computeChecksum() uint32 {
	return crc32.Checksum(b.data[schemaIDOffset:], castagnoli)
}

// IsValid reports whether the stored checksum matches the payload.
func (b *LogRecordBatch) IsValid() bool {
	return b.Checksum() == b.computeChecksum()
}

func (b *LogRecordBatch) BaseOffset() int64 {
	return int64(binary.BigEndian.Uint64(b.data[baseOffsetOffset:]))
}

func (b *LogRecordBatch) Magic() int8 {
	return int8(b.data[magicOffset])
}

func (b *LogRecordBatch) CommitTimestamp() int64 {
	return int64(binary.BigEndian.Uint64(b.data[commitTimestampOffset:]))
}

func (b *LogRecordBatch) Checksum() uint32 {
	return binary.BigEndian.Uint32(b.data[crcOffset:])
}

func (b *LogRecordBatch) SchemaID() int16 {
	return int16(binary.BigEndian.Uint16(b.data[schemaIDOffset:]))
}

func (b *LogRecordBatch) Attributes() int8 {
	return int8(b.data[attributesOffset])
}

// IsAppendOnly reports the append-only attribute bit.
func (b *LogRecordBatch) IsAppendOnly() bool {
	return b.Attributes()&appendOnlyFlag != 0
}

func (b *LogRecordBatch) LastOffsetDelta() int32 {
	return int32(binary.BigEndian.Uint32(b.data[lastOffsetDeltaOffset:]))
}

// LastLogOffset is the offset of the final record in the batch.
func (b *LogRecordBatch) LastLogOffset() int64 {
	return b.BaseOffset() + int64(b.LastOffsetDelta())
}

// NextLogOffset is the offset the following batch starts at.
func (b *LogRecordBatch) NextLogOffset() int64 {
	return b.LastLogOffset() + 1
}

func (b *LogRecordBatch) WriterID() int64 {
	return int64(binary.BigEndian.Uint64(b.data[writerIDOffset:]))
}

func (b *LogRecordBatch) BatchSequence() int32 {
	return int32(binary.BigEndian.Uint32(b.data[batchSequenceOffset:]))
}

func (b *LogRecordBatch) RecordCount() int32 {
	return int32(binary.BigEndian.Uint32(b.data[recordCountOffset:]))
}

// SizeInBytes is the total encoded size including the header.
func (b *LogRecordBatch) SizeInBytes() int {
	return len(b.data)
}

// Rows decodes the IPC body into owning rows. The stream schema must match
// rowType.
func (b *LogRecordBatch) Rows(rowType metadata.RowType) ([]*row.GenericRow, error) {
	schema, err := rowType.ToArrowSchema()
	if err != nil {
		return nil, err
	}

	reader, err := ipc.NewReader(bytes.NewReader(b.data[HeaderSize:]),
		ipc.WithSchema(schema), ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to open arrow stream")
	}
	defer reader.Release()

	rows := make([]*row.GenericRow, 0, b.RecordCount())
	for reader.Next() {
		rec := reader.Record()
		for i := 0; i < int(rec.NumRows()); i++ {
			r := row.NewGenericRow(int(rec.NumCols()))
			for c := 0; c < int(rec.NumCols()); c++ {
				d, err := row.FromArrow(rec.Column(c), i)
				if err != nil {
					return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to decode column "+schema.Field(c).Name)
				}
				if err := r.SetField(c, d); err != nil {
					return nil, err
				}
			}
			rows = append(rows, r)
		}
	}
	if err := reader.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to read arrow stream")
	}
	if len(rows) != int(b.RecordCount()) {
		return nil, errors.New(errors.ErrorTypeData, "decoded row count does not match header").
			WithDetail("header", b.RecordCount()).
			WithDetail("decoded", len(rows))
	}
	return rows, nil
}
