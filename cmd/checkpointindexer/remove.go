package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/ava-labs/checkpoint-indexer/pkg/utils"
)

func remove(c *cli.Context) error {
	ctx := context.Background()
	sugar, err := utils.NewSugaredLogger(c.Bool("verbose"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}
	if cfg.Stream == "" {
		return errors.New("stream is required")
	}

	cp, closeCP, err := openCheckpointer(ctx, cfg, sugar)
	if err != nil {
		return err
	}
	defer closeCP()

	if err := cp.Delete(ctx, cfg.Stream); err != nil {
		return fmt.Errorf("failed to delete cursor: %w", err)
	}

	sugar.Infof("cursor successfully removed for stream %s", cfg.Stream)
	return nil
}
