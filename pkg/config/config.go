package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/logger"
	"github.com/ajitpratap0/fluss-go/pkg/record"
)

// WriterConfig configures the client write path.
type WriterConfig struct {
	// BatchSizeBytes is the encoder's byte budget per batch
	BatchSizeBytes int64 `yaml:"batch_size_bytes" json:"batch_size_bytes" mapstructure:"batch_size_bytes"`
	// MaxRecordsPerBatch caps rows per batch (0 = bytes only)
	MaxRecordsPerBatch int `yaml:"max_records_per_batch" json:"max_records_per_batch" mapstructure:"max_records_per_batch"`
	// ArrowCompression is the IPC body codec: none, lz4 or zstd
	ArrowCompression string `yaml:"arrow_compression" json:"arrow_compression" mapstructure:"arrow_compression"`
	// BatchTimeout is the linger time after which the admission policy flushes
	BatchTimeout time.Duration `yaml:"batch_timeout" json:"batch_timeout" mapstructure:"batch_timeout"`

	Log logger.Config `yaml:"log" json:"log" mapstructure:"log"`
}

// DefaultWriterConfig returns the defaults used when a field is unset.
func DefaultWriterConfig() WriterConfig {
	opts := record.DefaultOptions()
	return WriterConfig{
		BatchSizeBytes:     opts.WriteLimitBytes,
		MaxRecordsPerBatch: opts.MaxRecords,
		ArrowCompression:   string(opts.Compression),
		BatchTimeout:       100 * time.Millisecond,
		Log:                logger.DefaultConfig(),
	}
}

// Validate checks the configuration for consistency.
func (c *WriterConfig) Validate() error {
	if c.BatchSizeBytes <= 0 {
		return errors.New(errors.ErrorTypeConfig, "batch_size_bytes must be positive").
			WithDetail("value", c.BatchSizeBytes)
	}
	if c.MaxRecordsPerBatch < 0 {
		return errors.New(errors.ErrorTypeConfig, "max_records_per_batch must not be negative").
			WithDetail("value", c.MaxRecordsPerBatch)
	}
	if c.BatchTimeout < 0 {
		return errors.New(errors.ErrorTypeConfig, "batch_timeout must not be negative")
	}
	if _, err := record.ParseCompression(c.ArrowCompression); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid arrow_compression")
	}
	return nil
}

// RecordOptions converts the configuration into encoder options.
func (c *WriterConfig) RecordOptions() (record.Options, error) {
	compression, err := record.ParseCompression(c.ArrowCompression)
	if err != nil {
		return record.Options{}, errors.Wrap(err, errors.ErrorTypeConfig, "invalid arrow_compression")
	}
	return record.Options{
		WriteLimitBytes: c.BatchSizeBytes,
		MaxRecords:      c.MaxRecordsPerBatch,
		Compression:     compression,
	}, nil
}

func (c *WriterConfig) applyDefaults() {
	d := DefaultWriterConfig()
	if c.BatchSizeBytes == 0 {
		c.BatchSizeBytes = d.BatchSizeBytes
	}
	if c.ArrowCompression == "" {
		c.ArrowCompression = d.ArrowCompression
	}
	c.ArrowCompression = strings.ToLower(c.ArrowCompression)
	if c.BatchTimeout == 0 {
		c.BatchTimeout = d.BatchTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = d.Log.Encoding
	}
}

func (c WriterConfig) String() string {
	return fmt.Sprintf("batch_size_bytes=%d max_records_per_batch=%d arrow_compression=%s batch_timeout=%s",
		c.BatchSizeBytes, c.MaxRecordsPerBatch, c.ArrowCompression, c.BatchTimeout)
}
