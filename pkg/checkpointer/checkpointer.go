package checkpointer

import (
	"context"
	"fmt"
	"time"
)

// Checkpointer abstracts cursor persistence across data stores. A cursor is the
// next sequence a stream has not delivered yet, which is where a restart resumes.
type Checkpointer interface {
	// Initialize ensures the underlying storage is ready (creates tables, directories, etc.).
	// It is idempotent.
	Initialize(ctx context.Context) error

	// Write atomically persists the cursor for stream.
	Write(ctx context.Context, stream string, next uint64) error

	// Read returns the persisted cursor for stream and whether one exists.
	Read(ctx context.Context, stream string) (next uint64, exists bool, err error)

	// Delete removes the cursor for stream. Deleting a missing cursor is not an error.
	Delete(ctx context.Context, stream string) error
}

// Watermark reports the next undelivered sequence; *slidingwindow.State satisfies it.
type Watermark interface {
	GetNext() uint64
}

// Start periodically persists the watermark until ctx is cancelled, then makes
// one final write so a graceful shutdown loses no progress.
//
// Returns nil on context cancellation, or an error if cfg is invalid or a
// periodic write fails after all retries.
func Start(
	ctx context.Context,
	w Watermark,
	checkpointer Checkpointer,
	cfg Config,
	stream string,
) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return writeFinal(w, checkpointer, cfg, stream)

		case <-t.C:
			next := w.GetNext()
			if err := writeWithRetry(ctx, checkpointer, cfg, stream, next); err != nil {
				if ctx.Err() != nil {
					return writeFinal(w, checkpointer, cfg, stream)
				}
				return err
			}
		}
	}
}

func writeWithRetry(ctx context.Context, checkpointer Checkpointer, cfg Config, stream string, next uint64) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		writeCtx, cancel := context.WithTimeout(ctx, cfg.WriteTimeout)
		lastErr = checkpointer.Write(writeCtx, stream, next)
		cancel()
		if lastErr == nil {
			return nil
		}

		// Don't sleep after the last attempt
		if attempt < cfg.MaxRetries {
			select {
			case <-time.After(cfg.RetryBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("failed to write checkpoint (stream: %s, next: %d) after %d attempts: %w",
		stream, next, cfg.MaxRetries+1, lastErr)
}

// writeFinal runs on a fresh context because the caller's is already done.
func writeFinal(w Watermark, checkpointer Checkpointer, cfg Config, stream string) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()
	if err := checkpointer.Write(ctx, stream, w.GetNext()); err != nil {
		return fmt.Errorf("failed to write final checkpoint (stream: %s): %w", stream, err)
	}
	return nil
}
