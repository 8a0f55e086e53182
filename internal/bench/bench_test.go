package bench

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/fluss-go/pkg/config"
	"github.com/ajitpratap0/fluss-go/pkg/errors"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
)

func testOptions(t *testing.T, rows, maxRecords int) Options {
	cfg := config.DefaultWriterConfig()
	cfg.MaxRecordsPerBatch = maxRecords
	cfg.BatchTimeout = time.Hour
	return Options{
		Table:  metadata.NewTablePath("fluss", "bench"),
		Rows:   rows,
		Writer: cfg,
		Logger: zaptest.NewLogger(t),
	}
}

// steppingClock advances by step on every reading.
func steppingClock(step time.Duration) func() time.Time {
	now := time.UnixMilli(1_700_000_000_000)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func TestRunSplitsByRecordLimit(t *testing.T) {
	opts := testOptions(t, 35, 10)
	opts.Verify = true

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "fluss.bench", report.Table)
	assert.Equal(t, "none", report.Compression)
	assert.Equal(t, 4, report.Batches)
	assert.Equal(t, 35, report.Records)
	assert.Zero(t, report.FailedRecords)
	assert.Positive(t, report.PayloadBytes)
	assert.Equal(t, report.PayloadBytes/4, report.AvgBatchBytes)
}

func TestRunFailuresReachEveryHandle(t *testing.T) {
	opts := testOptions(t, 35, 10)
	opts.FailEvery = 2

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	// batches 2 and 4 carry 10 and 5 rows
	assert.Equal(t, 15, report.FailedRecords)
	assert.Equal(t, 35, report.Records)
}

func TestRunSealsLingeringBatches(t *testing.T) {
	opts := testOptions(t, 5, 0)
	opts.Writer.BatchTimeout = 5 * time.Millisecond
	opts.Now = steppingClock(10 * time.Millisecond)

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Batches)
	assert.GreaterOrEqual(t, report.MaxWaitedMs, int64(5))
}

func TestRunCompressedVerify(t *testing.T) {
	for _, codec := range []string{"lz4", "zstd"} {
		codec := codec
		t.Run(codec, func(t *testing.T) {
			opts := testOptions(t, 200, 64)
			opts.Writer.ArrowCompression = codec
			opts.Verify = true

			report, err := Run(context.Background(), opts)
			require.NoError(t, err)
			assert.Equal(t, codec, report.Compression)
			assert.Equal(t, 4, report.Batches)
		})
	}
}

func TestRunByteBudget(t *testing.T) {
	opts := testOptions(t, 2000, 0)
	opts.Writer.BatchSizeBytes = 8 << 10

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Greater(t, report.Batches, 1)
	assert.Equal(t, 2000, report.Records)
}

func TestRunDumpsDecodedRows(t *testing.T) {
	var dump bytes.Buffer
	opts := testOptions(t, 12, 5)
	opts.Dump = &dump

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(dump.String(), "\n"), "\n")
	require.Len(t, lines, 12)
	assert.True(t, strings.HasPrefix(lines[0], "[0,null,"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `[1,"user-1",`), lines[1])
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testOptions(t, 10, 0))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRejectsInvalidOptions(t *testing.T) {
	opts := testOptions(t, -1, 0)
	_, err := Run(context.Background(), opts)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	opts = testOptions(t, 1, 0)
	opts.Writer.ArrowCompression = "snappy"
	_, err = Run(context.Background(), opts)
	assert.Error(t, err)
}

func TestGenerateRowIsDeterministic(t *testing.T) {
	assert.True(t, GenerateRow(42).Equal(GenerateRow(42)))
	assert.False(t, GenerateRow(42).Equal(GenerateRow(43)))
	assert.Equal(t, RowType().FieldCount(), GenerateRow(0).FieldCount())
}
