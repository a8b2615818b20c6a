// Package slidingwindow implements a bounded fetch-ahead window that fetches
// sequences concurrently and delivers them strictly in order.
//
// Terminology
//   - next: the lowest sequence not yet delivered. Everything below it has been
//     handed to the handler exactly once.
//   - window: [next, next+size), capped by an optional end sequence. Only
//     sequences inside the window are fetched, which bounds buffered memory.
//
// Main components
//   - State: thread-safe bookkeeping of the watermark, inflight sequences,
//     fetched-but-undelivered payloads and per-sequence failure counts.
//   - Manager: dispatches up to concurrency fetches, buffers out-of-order
//     completions, and runs a single delivery goroutine that calls the
//     Handler for next as soon as its payload is present. A sequence that
//     fails maxFailures times stops Run with a *FetchFailedError.
//   - StartStallWatchdog: logs when delivery is blocked behind a missing
//     sequence or the buffer grows too large.
//
// Usage
//  1. Construct a State with NewState(start, size), optionally SetEnd.
//  2. Construct a Manager with NewManager(logger, state, fetcher, handler, metrics, concurrency, maxFailures).
//  3. Call Run(ctx). Cancel ctx to stop; Run waits for inflight fetches.
package slidingwindow
