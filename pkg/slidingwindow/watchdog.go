package slidingwindow

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartStallWatchdog periodically checks the window and warns when later
// sequences are buffered but the watermark has not moved since the previous
// tick, or when the buffer grows beyond maxBuffered.
func StartStallWatchdog(ctx context.Context, log *zap.SugaredLogger, s *State, interval time.Duration, maxBuffered int) {
	t := time.NewTicker(interval)
	defer t.Stop()

	last := s.GetNext()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			next := s.GetNext()
			buffered := s.Buffered()
			// Waiting at the chain tip leaves nothing buffered and is not a stall.
			if next == last && buffered > 0 {
				log.Warnw("delivery stalled", "next", next, "buffered", buffered, "inflight", s.Inflight())
			}
			if buffered > maxBuffered {
				log.Warnw("buffer too large", "buffered", buffered, "next", next)
			}
			last = next
		}
	}
}
