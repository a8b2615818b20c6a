package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ava-labs/checkpoint-indexer/pkg/checkpointer"
	"github.com/ava-labs/checkpoint-indexer/pkg/pipeline"
	"github.com/ava-labs/checkpoint-indexer/pkg/source"
)

const envPrefix = "CHECKPOINT_INDEXER_"

const (
	defaultStart      = 213411264
	defaultEndpoint   = "https://checkpoints.testnet.sui.io"
	defaultStagingDir = "/tmp/checkpoints"
	defaultJSONDir    = "/tmp/checkpoints_json"
	defaultFiltered   = "filtered_transactions.json"
	defaultPackage    = "0x8d7866b423b15c3ae4c3b3737a4cd483b2ac720c3f1cf7dd67403f5a2dfa01d9"
)

func envVars(name string) []string {
	return []string{envPrefix + name}
}

// globalFlags are resolved before any command's flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "env-file",
			Usage:   "Load environment variables from this file before resolving flags (existing variables win)",
			EnvVars: envVars("ENV_FILE"),
		},
	}
}

// commonFlags are shared by every command that touches staged data or a sink.
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: envVars("VERBOSE"),
		},
		&cli.StringFlag{
			Name:    "staging-dir",
			Usage:   "Directory holding staged checkpoint blobs",
			EnvVars: envVars("STAGING_DIR"),
			Value:   defaultStagingDir,
		},
		&cli.StringFlag{
			Name:    "network",
			Usage:   "Sui network label attached to metrics",
			EnvVars: envVars("NETWORK"),
			Value:   "testnet",
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Deployment environment label (e.g., production, staging)",
			EnvVars: envVars("ENVIRONMENT"),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Cloud region label (e.g., us-east-1)",
			EnvVars: envVars("REGION"),
		},
		&cli.StringFlag{
			Name:    "cloud-provider",
			Usage:   "Cloud provider label (e.g., aws, gcp)",
			EnvVars: envVars("CLOUD_PROVIDER"),
		},
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for the Prometheus metrics server (empty for all interfaces)",
			EnvVars: envVars("METRICS_HOST"),
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "Port for the Prometheus metrics server (0 disables it)",
			EnvVars: envVars("METRICS_PORT"),
			Value:   9090,
		},
		&cli.BoolFlag{
			Name:    "publish-events",
			Usage:   "Publish pipeline events to Kafka (configured via KAFKA_* variables)",
			EnvVars: envVars("PUBLISH_EVENTS"),
		},
	}
}

// passFlags configure the batch passes over staged data.
func passFlags() []cli.Flag {
	def := pipeline.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "json-dir",
			Usage:   "Directory holding structured checkpoint documents",
			EnvVars: envVars("JSON_DIR"),
			Value:   defaultJSONDir,
		},
		&cli.StringFlag{
			Name:    "filtered-file",
			Usage:   "File holding the transactions selected by collect",
			EnvVars: envVars("FILTERED_FILE"),
			Value:   defaultFiltered,
		},
		&cli.StringFlag{
			Name:    "package",
			Aliases: []string{"p"},
			Usage:   "Move package id whose calls are indexed",
			EnvVars: envVars("PACKAGE"),
			Value:   defaultPackage,
		},
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "Concurrent checkpoints or batches per pass",
			EnvVars: envVars("WORKERS"),
			Value:   def.Workers,
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Usage:   "Records per sink batch",
			EnvVars: envVars("BATCH_SIZE"),
			Value:   def.BatchSize,
		},
	}
}

// sinkFlags select and address the record sink.
func sinkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "sink",
			Usage:   "Record sink: postgres or clickhouse",
			EnvVars: envVars("SINK"),
			Value:   sinkPostgres,
		},
		&cli.StringFlag{
			Name:    "postgres-url",
			Usage:   "Postgres connection URL (overrides POSTGRES_URL)",
			EnvVars: envVars("POSTGRES_URL"),
		},
		&cli.StringFlag{
			Name:    "clickhouse-cluster",
			Usage:   "ClickHouse cluster for ON CLUSTER DDL (empty for a single node)",
			EnvVars: envVars("CLICKHOUSE_CLUSTER"),
		},
		&cli.StringFlag{
			Name:    "clickhouse-table",
			Usage:   "ClickHouse table receiving records",
			EnvVars: envVars("CLICKHOUSE_TABLE"),
			Value:   "nft_transactions",
		},
	}
}

// cursorFlags address the persisted fetch cursor.
func cursorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "checkpointer",
			Usage:   "Cursor store: file or clickhouse",
			EnvVars: envVars("CHECKPOINTER"),
			Value:   backendFile,
		},
		&cli.StringFlag{
			Name:    "cursor-dir",
			Usage:   "Directory for the file cursor store",
			EnvVars: envVars("CURSOR_DIR"),
			Value:   defaultStagingDir + "/cursors",
		},
		&cli.StringFlag{
			Name:    "cursor-table",
			Usage:   "ClickHouse table for the cursor store",
			EnvVars: envVars("CURSOR_TABLE"),
			Value:   "cursors",
		},
		&cli.StringFlag{
			Name:    "clickhouse-cluster",
			Usage:   "ClickHouse cluster for ON CLUSTER DDL (empty for a single node)",
			EnvVars: envVars("CLICKHOUSE_CLUSTER"),
		},
		&cli.StringFlag{
			Name:    "stream",
			Usage:   "Cursor name; one per endpoint",
			EnvVars: envVars("STREAM"),
			Value:   "testnet",
		},
	}
}

func fetchFlags() []cli.Flag {
	retry := source.DefaultRetryConfig()
	cp := checkpointer.DefaultConfig()
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Aliases: []string{"e"},
			Usage:   "Checkpoint bucket base URL",
			EnvVars: envVars("ENDPOINT"),
			Value:   defaultEndpoint,
		},
		&cli.Uint64Flag{
			Name:    "start",
			Aliases: []string{"s"},
			Usage:   "First checkpoint sequence to fetch",
			EnvVars: envVars("START"),
			Value:   defaultStart,
		},
		&cli.Uint64Flag{
			Name:    "end",
			Usage:   "Last checkpoint sequence to fetch (inclusive); 0 streams without end",
			EnvVars: envVars("END"),
		},
		&cli.Uint64Flag{
			Name:    "concurrency",
			Aliases: []string{"c"},
			Usage:   "Concurrent fetches",
			EnvVars: envVars("CONCURRENCY"),
			Value:   5,
		},
		&cli.Uint64Flag{
			Name:    "window-size",
			Usage:   "Sequences fetched ahead of the watermark (0 means 4x concurrency)",
			EnvVars: envVars("WINDOW_SIZE"),
		},
		&cli.BoolFlag{
			Name:    "resume",
			Usage:   "Start after the highest staged checkpoint or persisted cursor, whichever is further",
			EnvVars: envVars("RESUME"),
		},
		&cli.DurationFlag{
			Name:    "fetch-timeout",
			Usage:   "Timeout for a single checkpoint download",
			EnvVars: envVars("FETCH_TIMEOUT"),
			Value:   30 * time.Second,
		},
		&cli.IntFlag{
			Name:    "max-attempts",
			Usage:   "Download attempts per checkpoint before the run fails",
			EnvVars: envVars("MAX_ATTEMPTS"),
			Value:   retry.MaxAttempts,
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Usage:   "Wait between polls for a checkpoint that does not exist yet",
			EnvVars: envVars("POLL_INTERVAL"),
			Value:   retry.PollInterval,
		},
		&cli.DurationFlag{
			Name:    "checkpoint-interval",
			Usage:   "Interval between cursor writes",
			EnvVars: envVars("CHECKPOINT_INTERVAL"),
			Value:   cp.Interval,
		},
		&cli.DurationFlag{
			Name:    "stall-interval",
			Usage:   "Interval of the stalled-window watchdog (0 disables it)",
			EnvVars: envVars("STALL_INTERVAL"),
			Value:   time.Minute,
		},
		&cli.IntFlag{
			Name:    "max-buffered",
			Usage:   "Buffered out-of-order checkpoints the watchdog tolerates",
			EnvVars: envVars("MAX_BUFFERED"),
			Value:   100,
		},
	}
	flags = append(flags, commonFlags()...)
	return append(flags, cursorFlags()...)
}

func passCommandFlags(withSink bool) []cli.Flag {
	flags := append(commonFlags(), passFlags()...)
	if withSink {
		flags = append(flags, sinkFlags()...)
	}
	return flags
}

func removeFlags() []cli.Flag {
	return append([]cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: envVars("VERBOSE"),
		},
	}, cursorFlags()...)
}
