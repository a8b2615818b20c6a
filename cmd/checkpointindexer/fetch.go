package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/checkpoint-indexer/pkg/checkpointer"
	"github.com/ava-labs/checkpoint-indexer/pkg/slidingwindow"
	"github.com/ava-labs/checkpoint-indexer/pkg/source"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
)

func fetch(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, cfg, "fetch")
	if err != nil {
		return err
	}
	defer rt.close()
	sugar := rt.log

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"endpoint", cfg.Endpoint,
		"start", cfg.Start,
		"end", cfg.End,
		"concurrency", cfg.Concurrency,
		"windowSize", cfg.WindowSize,
		"resume", cfg.Resume,
		"stagingDir", cfg.StagingDir,
		"checkpointer", cfg.Checkpointer,
		"stream", cfg.Stream,
		"maxAttempts", cfg.Retry.MaxAttempts,
	)

	st, err := store.New(cfg.StagingDir, stagedExt)
	if err != nil {
		return fmt.Errorf("failed to open staging store: %w", err)
	}

	cp, closeCP, err := openCheckpointer(ctx, cfg, sugar)
	if err != nil {
		return err
	}
	defer closeCP()

	if cfg.Resume {
		start, err := resumeStart(ctx, cfg.Start, st, cp, cfg.Stream)
		if err != nil {
			return err
		}
		sugar.Infow("resuming", "start", start, "configuredStart", cfg.Start)
		cfg.Start = start
	}
	if cfg.End != 0 && cfg.Start > cfg.End {
		sugar.Infow("nothing to fetch", "start", cfg.Start, "end", cfg.End)
		return nil
	}

	client, err := source.NewHTTPClient(cfg.Endpoint, cfg.FetchTimeout, rt.metrics)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint client: %w", err)
	}
	staging := source.NewStaging(st, rt.observer)
	adapter, err := source.NewAdapter(sugar, client, staging.Handle, rt.metrics, cfg.SourceConfig())
	if err != nil {
		return fmt.Errorf("failed to create source adapter: %w", err)
	}

	err = rt.run(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		// The cursor writer outlives the adapter by one final write.
		cursorCtx, stopCursor := context.WithCancel(gctx)
		defer stopCursor()

		g.Go(func() error {
			defer stopCursor()
			return adapter.Run(gctx)
		})
		g.Go(func() error {
			return checkpointer.Start(cursorCtx, adapter.State(), cp, cfg.CheckpointerConfig(), cfg.Stream)
		})
		if cfg.StallInterval > 0 {
			g.Go(func() error {
				slidingwindow.StartStallWatchdog(cursorCtx, sugar, adapter.State(), cfg.StallInterval, cfg.MaxBuffered)
				return nil
			})
		}
		return g.Wait()
	})

	if last, ok := adapter.LastDelivered(); ok {
		staged, _ := staging.LastStaged()
		sugar.Infow("fetch finished", "lastDelivered", last, "lastStaged", staged, "next", adapter.State().GetNext())
	}
	return err
}

// resumeStart picks up after the highest staged checkpoint or the persisted
// cursor, whichever is further. start applies only when neither exists.
func resumeStart(ctx context.Context, start uint64, st *store.Store, cp checkpointer.Checkpointer, stream string) (uint64, error) {
	highest, staged, err := st.Highest()
	if err != nil {
		return 0, fmt.Errorf("failed to read staged checkpoints: %w", err)
	}
	cursor, hasCursor, err := cp.Read(ctx, stream)
	if err != nil {
		return 0, fmt.Errorf("failed to read cursor: %w", err)
	}
	return resumePoint(start, highest, staged, cursor, hasCursor), nil
}

func resumePoint(start, highest uint64, staged bool, cursor uint64, hasCursor bool) uint64 {
	if !staged && !hasCursor {
		return start
	}
	var next uint64
	if staged {
		next = highest + 1
	}
	if hasCursor && cursor > next {
		next = cursor
	}
	return next
}
