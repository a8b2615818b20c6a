package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/checkpoint-indexer/pkg/checkpointer"
	"github.com/ava-labs/checkpoint-indexer/pkg/clickhouse"
	"github.com/ava-labs/checkpoint-indexer/pkg/data/clickhouse/checkpoint"
	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/kafka"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
	"github.com/ava-labs/checkpoint-indexer/pkg/postgres"
	"github.com/ava-labs/checkpoint-indexer/pkg/sink"
	"github.com/ava-labs/checkpoint-indexer/pkg/utils"
)

const (
	stagedExt = "chk"
	docExt    = "json"

	metricsShutdownTimeout = 5 * time.Second
)

// runtime is the ambient stack shared by every command: logger, metrics and
// the event fan-out.
type runtime struct {
	cfg       *Config
	log       *zap.SugaredLogger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	observer  events.Observer
	producer  *kafka.Producer
	publisher *kafka.EventPublisher
	flush     time.Duration
}

func newRuntime(ctx context.Context, cfg *Config, command string) (*runtime, error) {
	log, err := utils.NewSugaredLogger(cfg.Verbose, "command", command)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.NewWithLabels(registry, cfg.Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log, registry: registry, metrics: m}
	observers := []events.Observer{events.NewLogObserver(log), m}

	if cfg.PublishEvents {
		if err := rt.openPublisher(ctx); err != nil {
			return nil, err
		}
		observers = append(observers, rt.publisher)
	}
	rt.observer = events.Multi(observers...)
	return rt, nil
}

func (rt *runtime) openPublisher(ctx context.Context) error {
	kcfg, err := kafka.Load()
	if err != nil {
		return err
	}

	admin, err := kafka.NewAdmin(kcfg)
	if err != nil {
		return err
	}
	err = kafka.EnsureTopic(ctx, admin, kcfg.TopicConfig(), rt.log)
	admin.Close()
	if err != nil {
		return fmt.Errorf("failed to ensure events topic: %w", err)
	}

	producer, err := kafka.NewProducer(ctx, kcfg.ConfigMap(), rt.log)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	publisher, err := kafka.NewEventPublisher(rt.log, producer, kcfg.Topic, kcfg.BufferSize)
	if err != nil {
		producer.Close(0)
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	rt.producer = producer
	rt.publisher = publisher
	rt.flush = *kcfg.FlushTimeout
	rt.log.Infow("publishing events", "topic", kcfg.Topic, "brokers", kcfg.BootstrapServers)
	return nil
}

func (rt *runtime) close() {
	if rt.producer != nil {
		rt.producer.Close(rt.flush)
	}
	_ = rt.log.Desugar().Sync()
}

// run executes work next to the metrics server and the event publisher. Those
// stop once work returns; a failure in either cancels work.
func (rt *runtime) run(ctx context.Context, work func(ctx context.Context) error, checks ...metrics.HealthCheck) error {
	workCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(workCtx)

	if rt.cfg.MetricsPort > 0 {
		srv := metrics.NewServer(rt.cfg.MetricsAddr(), rt.registry, checks...)
		errCh := srv.Start()
		rt.log.Infow("metrics server started", "address", rt.cfg.MetricsAddr())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				rt.log.Warnw("metrics server shutdown failed", "error", err)
			}
		}()
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			case err := <-errCh:
				return err
			}
		})
	}

	if rt.publisher != nil {
		g.Go(func() error {
			return rt.publisher.Run(gctx)
		})
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			case err := <-rt.producer.Errors():
				return err
			}
		})
	}

	g.Go(func() error {
		defer cancel()
		return work(gctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		rt.log.Infow("exiting due to context cancellation")
		return nil
	}
	if err != nil {
		rt.log.Errorw("run failed", "error", err)
		return err
	}
	if rt.publisher != nil {
		rt.log.Infow("events published", "published", rt.publisher.Published(), "dropped", rt.publisher.Dropped())
	}
	return nil
}

// openLoader connects the configured sink and creates its table. The returned
// health check pings the sink's backend.
func openLoader(ctx context.Context, rt *runtime) (sink.Loader, metrics.HealthCheck, func(), error) {
	switch rt.cfg.Sink {
	case sinkClickHouse:
		chCfg, err := clickhouse.Load()
		if err != nil {
			return nil, nil, nil, err
		}
		client, err := clickhouse.New(chCfg, rt.log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		closeFn := func() { _ = client.Close() }
		loader, err := sink.NewClickHouse(rt.log, client, rt.cfg.ClickHouseCluster, chCfg.Database, rt.cfg.ClickHouseTable, rt.observer, rt.metrics)
		if err == nil {
			err = loader.Initialize(ctx)
		}
		if err != nil {
			closeFn()
			return nil, nil, nil, err
		}
		return loader, client.Ping, closeFn, nil

	default:
		pgCfg, err := postgres.Load()
		if err != nil {
			return nil, nil, nil, err
		}
		if rt.cfg.PostgresURL != "" {
			pgCfg.URL = rt.cfg.PostgresURL
		}
		pool, err := postgres.New(ctx, pgCfg, rt.log)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		loader, err := sink.NewPostgres(rt.log, sink.PoolOf(pool), rt.observer, rt.metrics)
		if err == nil {
			err = loader.Initialize(ctx)
		}
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return loader, pool.Ping, pool.Close, nil
	}
}

// openCheckpointer returns the configured cursor store, initialized.
func openCheckpointer(ctx context.Context, cfg *Config, log *zap.SugaredLogger) (checkpointer.Checkpointer, func(), error) {
	var (
		cp      checkpointer.Checkpointer
		closeFn = func() {}
	)
	switch cfg.Checkpointer {
	case backendClickHouse:
		chCfg, err := clickhouse.Load()
		if err != nil {
			return nil, nil, err
		}
		client, err := clickhouse.New(chCfg, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		closeFn = func() { _ = client.Close() }
		repo, err := checkpoint.NewRepository(client, cfg.ClickHouseCluster, chCfg.Database, cfg.CursorTable)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to create checkpoint repository: %w", err)
		}
		cp = repo
	default:
		file, err := checkpointer.NewFile(cfg.CursorDir)
		if err != nil {
			return nil, nil, err
		}
		cp = file
	}

	if err := cp.Initialize(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to initialize checkpointer: %w", err)
	}
	return cp, closeFn, nil
}
