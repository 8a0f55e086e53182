package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/fluss-go/pkg/config"
)

// ExampleDefaultWriterConfig demonstrates the defaults applied to unset fields.
func ExampleDefaultWriterConfig() {
	cfg := config.DefaultWriterConfig()

	fmt.Printf("Batch Size: %d\n", cfg.BatchSizeBytes)
	fmt.Printf("Compression: %s\n", cfg.ArrowCompression)
	fmt.Printf("Batch Timeout: %s\n", cfg.BatchTimeout)

	// Output:
	// Batch Size: 2097152
	// Compression: none
	// Batch Timeout: 100ms
}

// ExampleWriterConfig_Validate shows how to validate a configuration
// before using it.
func ExampleWriterConfig_Validate() {
	cfg := config.DefaultWriterConfig()
	cfg.MaxRecordsPerBatch = 1000
	cfg.ArrowCompression = "zstd"

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.ArrowCompression = "brotli"
	fmt.Println(cfg.Validate() != nil)

	// Output:
	// Configuration is valid!
	// true
}
