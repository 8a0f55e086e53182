// Package fluss is the Go client write path for Fluss log tables.
//
// Rows appended by a producer are grouped per table bucket into write
// batches. A batch accepts rows until its encoder reports it full or it is
// closed, is then built into one log record batch (a fixed 48-byte header
// followed by an Arrow IPC stream) and, once the server answers, completed.
// Completion is broadcast to every handle issued by the batch.
//
// # Quick Start
//
//	rowType := metadata.NewRowType(
//	    metadata.Field("id", metadata.Int().NotNull()),
//	    metadata.Field("name", metadata.String()),
//	)
//	table := metadata.NewTablePath("fluss", "events")
//
//	batch, err := write.NewArrowLogWriteBatch(1, table, 1, rowType, 0, time.Now().UnixMilli())
//	if err != nil {
//	    return err
//	}
//	defer batch.Release()
//
//	handle, err := batch.TryAppend(write.NewWriteRecord(table,
//	    row.GenericRowOf(row.Int32Datum(1), row.StringDatum("a"))))
//	if err != nil {
//	    return err
//	}
//	// a nil handle means the batch is full or closed; open a new one
//
//	batch.Close()
//	payload, err := batch.Build()
//	if err != nil {
//	    return err
//	}
//	// ... send payload ...
//	batch.Complete(nil)
//	err = handle.Wait(ctx)
//
// # Key Packages
//
//	pkg/row           - Datum values, generic rows and Arrow conversion
//	pkg/metadata      - Table paths, data types and Arrow schemas
//	pkg/record        - Arrow log record batch encoder and reader
//	pkg/broadcast     - Single-assignment result broadcast
//	pkg/client/write  - Write batch lifecycle
//	pkg/config        - Writer configuration
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus collectors for the write path
//	pkg/observability - OpenTelemetry tracing
//
// # Configuration
//
// Writer settings are loaded from YAML with ${VAR_NAME} substitution:
//
//	batch_size_bytes: 2097152
//	max_records_per_batch: 0
//	arrow_compression: zstd
//	batch_timeout: 100ms
//	log:
//	  level: info
//
// # Development
//
// The fluss-writer command drives the write path end to end:
//
//	go run ./cmd/fluss-writer bench --rows 100000 --arrow-compression lz4 --verify
package fluss
