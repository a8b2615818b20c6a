package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
	"github.com/ava-labs/checkpoint-indexer/pkg/pipeline"
	"github.com/ava-labs/checkpoint-indexer/pkg/sink"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
)

// passEnv is what a pass body gets; loader is nil unless the command has a sink.
type passEnv struct {
	cfg      *Config
	pipeline *pipeline.Pipeline
	engine   *filter.Engine
	loader   sink.Loader
}

type passFunc func(ctx context.Context, env passEnv) (pipeline.Stats, error)

func transform(c *cli.Context) error {
	return runPass(c, "transform", false, func(ctx context.Context, env passEnv) (pipeline.Stats, error) {
		staged, docs, err := openStores(env.cfg)
		if err != nil {
			return pipeline.Stats{}, err
		}
		return env.pipeline.Transform(ctx, staged, docs)
	})
}

func collect(c *cli.Context) error {
	return runPass(c, "collect", false, func(ctx context.Context, env passEnv) (pipeline.Stats, error) {
		_, docs, err := openStores(env.cfg)
		if err != nil {
			return pipeline.Stats{}, err
		}
		return env.pipeline.Collect(ctx, docs, env.engine, env.cfg.FilteredFile)
	})
}

func load(c *cli.Context) error {
	return runPass(c, "load", true, func(ctx context.Context, env passEnv) (pipeline.Stats, error) {
		return env.pipeline.Load(ctx, env.cfg.FilteredFile, env.engine, env.loader)
	})
}

func process(c *cli.Context) error {
	return runPass(c, "process", true, func(ctx context.Context, env passEnv) (pipeline.Stats, error) {
		staged, err := store.New(env.cfg.StagingDir, stagedExt)
		if err != nil {
			return pipeline.Stats{}, fmt.Errorf("failed to open staging store: %w", err)
		}
		return env.pipeline.Process(ctx, staged, env.engine, env.loader)
	})
}

func openStores(cfg *Config) (staged, docs *store.Store, err error) {
	staged, err = store.New(cfg.StagingDir, stagedExt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open staging store: %w", err)
	}
	docs, err = store.New(cfg.JSONDir, docExt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return staged, docs, nil
}

func runPass(c *cli.Context, name string, withSink bool, body passFunc) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, name)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.log.Infow("config",
		"verbose", cfg.Verbose,
		"stagingDir", cfg.StagingDir,
		"jsonDir", cfg.JSONDir,
		"filteredFile", cfg.FilteredFile,
		"package", cfg.Package,
		"workers", cfg.Pipeline.Workers,
		"batchSize", cfg.Pipeline.BatchSize,
		"sink", cfg.Sink,
	)

	p, err := pipeline.New(rt.log, rt.observer, rt.metrics, cfg.Pipeline)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	engine, err := filter.New(rt.log, cfg.Package)
	if err != nil {
		return fmt.Errorf("failed to create filter: %w", err)
	}
	env := passEnv{cfg: cfg, pipeline: p, engine: engine}

	var checks []metrics.HealthCheck
	if withSink {
		loader, check, closeLoader, err := openLoader(ctx, rt)
		if err != nil {
			return err
		}
		defer closeLoader()
		env.loader = loader
		checks = append(checks, check)
	}

	return rt.run(ctx, func(ctx context.Context) error {
		stats, err := body(ctx, env)
		rt.log.Infow(name+" finished",
			"checkpoints", stats.Checkpoints,
			"skipped", stats.Skipped,
			"matched", stats.Matched,
			"inserted", stats.Inserted,
			"rejected", stats.Rejected,
		)
		return err
	}, checks...)
}
