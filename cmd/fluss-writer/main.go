package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/fluss-go/internal/bench"
	"github.com/ajitpratap0/fluss-go/pkg/config"
	"github.com/ajitpratap0/fluss-go/pkg/json"
	"github.com/ajitpratap0/fluss-go/pkg/logger"
	"github.com/ajitpratap0/fluss-go/pkg/metadata"
	"github.com/ajitpratap0/fluss-go/pkg/observability"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fluss-writer",
		Short: "Fluss client write path tooling",
		Long: `fluss-writer exercises the Fluss client write path: rows are appended into
Arrow log write batches, sealed, encoded into log record batches and completed.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fluss-writer v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(newBenchCmd())
	return root
}

type benchFlags struct {
	configFile string
	table      string
	bucket     int32
	rows       int
	failEvery  int
	verify     bool
	reportFile string
	dumpFile   string
	tracing    string
	timeout    time.Duration
}

func newBenchCmd() *cobra.Command {
	v := viper.New()
	var f benchFlags

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Append generated rows through write batches",
		Long: `Append generated rows through Arrow log write batches and report what was built.

Writer settings come from, in increasing priority: defaults, the --config YAML
file, FLUSS_* environment variables and flags.

Example:
  fluss-writer bench --rows 100000 --arrow-compression zstd --max-records-per-batch 4096`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadWriterConfig(v, f.configFile)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return runBench(cmd.Context(), cmd.OutOrStdout(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configFile, "config", "c", "", "Path to writer configuration YAML file")
	flags.StringVar(&f.table, "table", "fluss.bench", "Target table as database.table")
	flags.Int32Var(&f.bucket, "bucket", 0, "Target bucket id")
	flags.IntVar(&f.rows, "rows", 100000, "Number of rows to append")
	flags.IntVar(&f.failEvery, "fail-every", 0, "Complete every Nth batch with a simulated failure (0 disables)")
	flags.BoolVar(&f.verify, "verify", false, "Decode every built batch and compare it with the appended rows")
	flags.StringVar(&f.reportFile, "report", "", "Write the JSON report to this file instead of stdout")
	flags.StringVar(&f.dumpFile, "dump-rows", "", "Write every decoded row as line-delimited JSON to this file")
	flags.StringVar(&f.tracing, "tracing", "none", "Trace exporter (none, stdout)")
	flags.DurationVar(&f.timeout, "timeout", 10*time.Minute, "Abort the run after this long")

	d := config.DefaultWriterConfig()
	flags.Int64("batch-size-bytes", d.BatchSizeBytes, "Byte budget of one batch")
	flags.Int("max-records-per-batch", d.MaxRecordsPerBatch, "Row cap of one batch (0 = bytes only)")
	flags.String("arrow-compression", d.ArrowCompression, "Arrow IPC body codec (none, lz4, zstd)")
	flags.Duration("batch-timeout", d.BatchTimeout, "Linger time before a batch is sealed")
	flags.String("log-level", d.Log.Level, "Log level (debug, info, warn, error)")

	for key, flag := range map[string]string{
		"batch_size_bytes":      "batch-size-bytes",
		"max_records_per_batch": "max-records-per-batch",
		"arrow_compression":     "arrow-compression",
		"batch_timeout":         "batch-timeout",
		"log.level":             "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

// loadWriterConfig merges defaults, the optional YAML file, FLUSS_*
// environment variables and bound flags.
func loadWriterConfig(v *viper.Viper, configFile string) (config.WriterConfig, error) {
	d := config.DefaultWriterConfig()
	v.SetDefault("batch_size_bytes", d.BatchSizeBytes)
	v.SetDefault("max_records_per_batch", d.MaxRecordsPerBatch)
	v.SetDefault("arrow_compression", d.ArrowCompression)
	v.SetDefault("batch_timeout", d.BatchTimeout)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.development", d.Log.Development)

	v.SetEnvPrefix("FLUSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return config.WriterConfig{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg config.WriterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return config.WriterConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Finalize(&cfg); err != nil {
		return config.WriterConfig{}, err
	}
	return cfg, nil
}

func runBench(ctx context.Context, stdout io.Writer, cfg config.WriterConfig, f benchFlags) error {
	table, err := metadata.ParseTablePath(f.table)
	if err != nil {
		return err
	}

	l, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Set(l)
	defer func() { _ = l.Sync() }()

	tc := observability.DefaultTracingConfig()
	tc.ServiceName = "fluss-writer"
	tc.ServiceVersion = version
	tc.ExporterType = f.tracing
	tc.Output = os.Stderr
	shutdown, err := observability.InitTracing(tc)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			l.Warn("failed to shut down tracing", zap.Error(err))
		}
	}()

	opts := bench.Options{
		Table:     table,
		Bucket:    f.bucket,
		Rows:      f.rows,
		Writer:    cfg,
		FailEvery: f.failEvery,
		Verify:    f.verify,
		Logger:    l,
	}
	if f.dumpFile != "" {
		dump, err := os.Create(f.dumpFile)
		if err != nil {
			return fmt.Errorf("failed to create dump file %s: %w", f.dumpFile, err)
		}
		defer dump.Close()
		opts.Dump = dump
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	l.Info("starting bench",
		zap.String("table", table.String()),
		zap.Int("rows", f.rows),
		zap.Int64("batch_size_bytes", cfg.BatchSizeBytes),
		zap.Int("max_records_per_batch", cfg.MaxRecordsPerBatch),
		zap.String("arrow_compression", cfg.ArrowCompression),
		zap.Duration("batch_timeout", cfg.BatchTimeout))

	report, err := bench.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("bench failed: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	if f.reportFile != "" {
		if err := os.WriteFile(f.reportFile, data, 0600); err != nil {
			return fmt.Errorf("failed to write report %s: %w", f.reportFile, err)
		}
		return nil
	}
	_, err = stdout.Write(data)
	return err
}
