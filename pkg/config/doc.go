// Package config provides configuration for the fluss Go client write path.
//
// WriterConfig holds the encoder budget (bytes and rows per batch), the Arrow
// IPC compression codec, the linger time consumed by the admission policy,
// and logger settings. It is read from YAML with ${VAR_NAME} environment
// substitution:
//
//	cfg, err := config.LoadWriterConfig("writer.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	opts, _ := cfg.RecordOptions()
//
// A minimal file:
//
//	batch_size_bytes: 2097152
//	max_records_per_batch: 0
//	arrow_compression: ${FLUSS_COMPRESSION}
//	batch_timeout: 100ms
//	log:
//	  level: info
//	  encoding: json
//
// Unset fields take the values from DefaultWriterConfig.
package config
