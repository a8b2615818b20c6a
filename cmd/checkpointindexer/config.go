package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ava-labs/checkpoint-indexer/pkg/checkpointer"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
	"github.com/ava-labs/checkpoint-indexer/pkg/pipeline"
	"github.com/ava-labs/checkpoint-indexer/pkg/source"
)

const (
	sinkPostgres   = "postgres"
	sinkClickHouse = "clickhouse"

	backendFile       = "file"
	backendClickHouse = "clickhouse"
)

// Config holds everything a command needs; fields a command does not register
// keep their zero value.
type Config struct {
	// Application settings
	Verbose       bool
	StagingDir    string
	PublishEvents bool

	// Fetch settings
	Endpoint     string
	Start        uint64
	End          uint64
	Concurrency  uint64
	WindowSize   uint64
	Resume       bool
	FetchTimeout time.Duration
	Retry        source.RetryConfig

	// Cursor settings
	Checkpointer       string
	CursorDir          string
	CursorTable        string
	Stream             string
	CheckpointInterval time.Duration
	StallInterval      time.Duration
	MaxBuffered        int

	// Pass settings
	JSONDir      string
	FilteredFile string
	Package      string
	Pipeline     pipeline.Config

	// Sink settings
	Sink              string
	PostgresURL       string
	ClickHouseCluster string
	ClickHouseTable   string

	// Metrics settings
	MetricsHost string
	MetricsPort int
	Labels      metrics.Labels
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// SourceConfig converts the fetch settings into an adapter config.
func (c *Config) SourceConfig() source.Config {
	return source.Config{
		Start:       c.Start,
		End:         c.End,
		Bounded:     c.End != 0,
		Concurrency: c.Concurrency,
		WindowSize:  c.WindowSize,
		Retry:       c.Retry,
	}
}

// CheckpointerConfig returns the cursor write settings.
func (c *Config) CheckpointerConfig() checkpointer.Config {
	cfg := checkpointer.DefaultConfig()
	if c.CheckpointInterval > 0 {
		cfg.Interval = c.CheckpointInterval
	}
	return cfg
}

// buildConfig builds a Config from CLI context flags
func buildConfig(c *cli.Context) (*Config, error) {
	retry := source.DefaultRetryConfig()
	if c.IsSet("max-attempts") {
		retry.MaxAttempts = c.Int("max-attempts")
	}
	if c.IsSet("poll-interval") {
		retry.PollInterval = c.Duration("poll-interval")
	}

	cfg := &Config{
		Verbose:            c.Bool("verbose"),
		StagingDir:         c.String("staging-dir"),
		PublishEvents:      c.Bool("publish-events"),
		Endpoint:           c.String("endpoint"),
		Start:              c.Uint64("start"),
		End:                c.Uint64("end"),
		Concurrency:        c.Uint64("concurrency"),
		WindowSize:         c.Uint64("window-size"),
		Resume:             c.Bool("resume"),
		FetchTimeout:       c.Duration("fetch-timeout"),
		Retry:              retry,
		Checkpointer:       c.String("checkpointer"),
		CursorDir:          c.String("cursor-dir"),
		CursorTable:        c.String("cursor-table"),
		Stream:             c.String("stream"),
		CheckpointInterval: c.Duration("checkpoint-interval"),
		StallInterval:      c.Duration("stall-interval"),
		MaxBuffered:        c.Int("max-buffered"),
		JSONDir:            c.String("json-dir"),
		FilteredFile:       c.String("filtered-file"),
		Package:            c.String("package"),
		Pipeline: pipeline.Config{
			Workers:   c.Int("workers"),
			BatchSize: c.Int("batch-size"),
		},
		Sink:              c.String("sink"),
		PostgresURL:       c.String("postgres-url"),
		ClickHouseCluster: c.String("clickhouse-cluster"),
		ClickHouseTable:   c.String("clickhouse-table"),
		MetricsHost:       c.String("metrics-host"),
		MetricsPort:       c.Int("metrics-port"),
		Labels: metrics.Labels{
			Network:       c.String("network"),
			Environment:   c.String("environment"),
			Region:        c.String("region"),
			CloudProvider: c.String("cloud-provider"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.End != 0 && c.End < c.Start {
		return fmt.Errorf("invalid end: %d is before start %d", c.End, c.Start)
	}
	if c.Sink != "" && c.Sink != sinkPostgres && c.Sink != sinkClickHouse {
		return fmt.Errorf("invalid sink %q: must be %s or %s", c.Sink, sinkPostgres, sinkClickHouse)
	}
	if c.Checkpointer != "" && c.Checkpointer != backendFile && c.Checkpointer != backendClickHouse {
		return fmt.Errorf("invalid checkpointer %q: must be %s or %s", c.Checkpointer, backendFile, backendClickHouse)
	}
	if c.MetricsPort < 0 {
		return errors.New("invalid metrics port: must not be negative")
	}
	return nil
}
