// Package record encodes rows into Arrow log record batches and decodes them
// back.
//
// A log record batch is a fixed 48 byte big endian header followed by an
// Arrow IPC stream holding a single record batch:
//
//	offset  size  field
//	0       8     base offset
//	8       4     length of everything after this field
//	12      1     magic
//	13      8     commit timestamp
//	21      4     CRC32C of bytes [25:]
//	25      2     schema id
//	27      1     attributes
//	28      4     last offset delta (record count - 1)
//	32      8     writer id
//	40      4     batch sequence
//	44      4     record count
//	48      ...   Arrow IPC stream
package record

import (
	"strings"

	"github.com/apache/arrow-go/v18/arrow/ipc"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
)

// DefaultWriteLimitBytes is the default encoder byte budget per batch.
const DefaultWriteLimitBytes int64 = 2 << 20

// Compression selects the Arrow IPC body codec.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a codec name. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(strings.TrimSpace(s))); c {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionLZ4, CompressionZstd:
		return c, nil
	default:
		return "", errors.Newf(errors.ErrorTypeValidation, "unsupported compression %q", s).
			WithDetail("supported", []string{"none", "lz4", "zstd"})
	}
}

func (c Compression) ipcOptions() []ipc.Option {
	switch c {
	case CompressionLZ4:
		return []ipc.Option{ipc.WithLZ4()}
	case CompressionZstd:
		return []ipc.Option{ipc.WithZstd()}
	default:
		return nil
	}
}

// Options bounds a single encoder.
type Options struct {
	// WriteLimitBytes is the estimated size at which the encoder reports full
	WriteLimitBytes int64
	// MaxRecords caps the number of rows; 0 disables the cap
	MaxRecords int
	// Compression is the IPC body codec
	Compression Compression
}

// DefaultOptions returns a 2 MiB byte budget, no row cap and no compression.
func DefaultOptions() Options {
	return Options{
		WriteLimitBytes: DefaultWriteLimitBytes,
		Compression:     CompressionNone,
	}
}

func (o Options) normalized() (Options, error) {
	if o.WriteLimitBytes <= 0 {
		o.WriteLimitBytes = DefaultWriteLimitBytes
	}
	if o.MaxRecords < 0 {
		return o, errors.New(errors.ErrorTypeValidation, "max records must not be negative").
			WithDetail("max_records", o.MaxRecords)
	}
	c, err := ParseCompression(string(o.Compression))
	if err != nil {
		return o, err
	}
	o.Compression = c
	return o, nil
}
