package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/record"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "writer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadWriterConfigSubstitutesEnv(t *testing.T) {
	t.Setenv("FLUSS_TEST_COMPRESSION", "LZ4")
	path := writeFile(t, `
batch_size_bytes: 4096
max_records_per_batch: 10
arrow_compression: ${FLUSS_TEST_COMPRESSION}
batch_timeout: 250ms
log:
  level: debug
`)

	cfg, err := LoadWriterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4096), cfg.BatchSizeBytes)
	assert.Equal(t, 10, cfg.MaxRecordsPerBatch)
	assert.Equal(t, "lz4", cfg.ArrowCompression)
	assert.Equal(t, 250*time.Millisecond, cfg.BatchTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Encoding)

	opts, err := cfg.RecordOptions()
	require.NoError(t, err)
	assert.Equal(t, record.Options{WriteLimitBytes: 4096, MaxRecords: 10, Compression: record.CompressionLZ4}, opts)
}

func TestLoadWriterConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadWriterConfig(writeFile(t, "max_records_per_batch: 3\n"))
	require.NoError(t, err)

	d := DefaultWriterConfig()
	assert.Equal(t, d.BatchSizeBytes, cfg.BatchSizeBytes)
	assert.Equal(t, d.ArrowCompression, cfg.ArrowCompression)
	assert.Equal(t, 3, cfg.MaxRecordsPerBatch)
}

func TestLoadWriterConfigErrors(t *testing.T) {
	_, err := LoadWriterConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadWriterConfig(writeFile(t, "batch_size_bytes: [1, 2]\n"))
	assert.Error(t, err)

	_, err = LoadWriterConfig(writeFile(t, "arrow_compression: snappy\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WriterConfig)
	}{
		{"zero batch size", func(c *WriterConfig) { c.BatchSizeBytes = 0 }},
		{"negative records", func(c *WriterConfig) { c.MaxRecordsPerBatch = -1 }},
		{"negative timeout", func(c *WriterConfig) { c.BatchTimeout = -time.Second }},
		{"unknown codec", func(c *WriterConfig) { c.ArrowCompression = "gzip" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultWriterConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		})
	}

	cfg := DefaultWriterConfig()
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	// durations encode as integers, which yaml.v3 refuses to decode back
	raw := map[string]interface{}{
		"max_records_per_batch": 42,
		"batch_timeout":         "1s",
	}
	require.NoError(t, Save(path, raw))

	loaded, err := LoadWriterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.MaxRecordsPerBatch)
	assert.Equal(t, time.Second, loaded.BatchTimeout)
}
