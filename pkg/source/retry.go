package source

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
)

// RetryConfig bounds the retries of a single checkpoint fetch.
type RetryConfig struct {
	MaxAttempts     int           // attempts per sequence, not counting not-available polls
	InitialInterval time.Duration // first backoff delay
	MaxInterval     time.Duration // backoff delay cap
	PollInterval    time.Duration // wait between polls for a checkpoint not produced yet
}

// DefaultRetryConfig returns a RetryConfig with sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		PollInterval:    2 * time.Second,
	}
}

// retryingFetcher wraps a Client with bounded exponential backoff. Not-available
// responses are polled without consuming attempts.
type retryingFetcher struct {
	log     *zap.SugaredLogger
	client  Client
	cfg     RetryConfig
	metrics *metrics.Metrics
}

func (f *retryingFetcher) Fetch(ctx context.Context, seq uint64) ([]byte, error) {
	op := func() ([]byte, error) {
		for {
			b, err := f.client.Fetch(ctx, seq)
			if !errors.Is(err, ErrNotAvailable) {
				return b, err
			}
			select {
			case <-ctx.Done():
				return nil, backoff.Permanent(ctx.Err())
			case <-time.After(f.cfg.PollInterval):
			}
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.cfg.InitialInterval
	b.MaxInterval = f.cfg.MaxInterval
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.cfg.MaxAttempts-1)), ctx)
	notify := func(err error, wait time.Duration) {
		f.metrics.IncFetchRetry()
		f.log.Debugw("retrying checkpoint fetch", "sequence", seq, "wait", wait, "error", err)
	}
	return backoff.RetryNotifyWithData(op, policy, notify)
}
