package slidingwindow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
)

// Fetcher retrieves the payload for one sequence. Implementations must be
// safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, seq uint64) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, seq uint64) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, seq uint64) ([]byte, error) {
	return f(ctx, seq)
}

// Handler receives payloads strictly in increasing sequence order, one at a time.
// A non-nil error stops the Manager.
type Handler func(ctx context.Context, seq uint64, payload []byte) error

// FetchFailedError is returned by Run when a sequence exhausts its failure budget.
type FetchFailedError struct {
	Sequence uint64
	Attempts int
	Err      error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf(
		"max failures exceeded for sequence %d, failed after %d attempts: %v",
		e.Sequence,
		e.Attempts,
		e.Err,
	)
}

func (e *FetchFailedError) Unwrap() error { return e.Err }

type Manager struct {
	log     *zap.SugaredLogger
	state   *State
	fetcher Fetcher
	handler Handler
	metrics *metrics.Metrics
	start   uint64

	// Limits concurrent fetches.
	workerSem *semaphore.Weighted

	// Wake-up signals; buffered (size 1) to coalesce.
	workReady    chan struct{}
	fetchedReady chan struct{}

	// Failure threshold for a sequence; when reached, the fetch reports to failureChan.
	maxFailures int
	failureChan chan *FetchFailedError

	inflight sync.WaitGroup
}

// NewManager creates a Manager and returns an error if arguments are invalid.
// Constraints: concurrency>0; maxFailures>0. m may be nil.
func NewManager(
	log *zap.SugaredLogger,
	s *State,
	f Fetcher,
	h Handler,
	m *metrics.Metrics,
	concurrency uint64,
	maxFailures int,
) (*Manager, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if s == nil {
		return nil, errors.New("invalid state: must not be nil")
	}
	if f == nil {
		return nil, errors.New("invalid fetcher: must not be nil")
	}
	if h == nil {
		return nil, errors.New("invalid handler: must not be nil")
	}
	if concurrency == 0 {
		return nil, errors.New("invalid concurrency: must be greater than 0")
	}
	if maxFailures <= 0 {
		return nil, errors.New("invalid max failures: must be greater than 0")
	}

	return &Manager{
		log:          log,
		state:        s,
		fetcher:      f,
		handler:      h,
		metrics:      m,
		start:        s.GetNext(),
		workerSem:    semaphore.NewWeighted(int64(concurrency)),
		workReady:    make(chan struct{}, 1),
		fetchedReady: make(chan struct{}, 1),
		maxFailures:  maxFailures,
		failureChan:  make(chan *FetchFailedError, 1),
	}, nil
}

// LastDelivered returns the highest sequence handed to the handler, if any.
func (m *Manager) LastDelivered() (uint64, bool) {
	next := m.state.GetNext()
	if next == m.start {
		return 0, false
	}
	return next - 1, true
}

// Run dispatches fetches for every unclaimed sequence in the window while
// capacity allows, and delivers fetched payloads in order from a separate
// goroutine.
//
// It returns nil once a bounded window has been fully delivered, ctx.Err() on
// cancellation, a *FetchFailedError when a sequence exhausts its failure
// budget, or the handler's error. In every case it waits for inflight fetches
// before returning.
func (m *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deliverDone := make(chan error, 1)
	go func() {
		deliverDone <- m.deliver(ctx)
	}()

	stop := func(err error, delivererExited bool) error {
		cancel()
		m.inflight.Wait()
		if !delivererExited {
			<-deliverDone
		}
		m.updateWindowMetrics()
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return stop(err, false)
		}

		// Fill all free worker slots (non-blocking)
		for m.workerSem.TryAcquire(1) {
			seq, ok := m.state.TryClaim()
			if !ok {
				m.workerSem.Release(1)
				break
			}
			m.inflight.Add(1)
			m.metrics.IncFetchInFlight()
			go m.fetch(ctx, seq)
		}
		m.updateWindowMetrics()

		select {
		case <-ctx.Done():
			return stop(ctx.Err(), false)
		case f := <-m.failureChan:
			return stop(f, false)
		case err := <-deliverDone:
			return stop(err, true)
		case <-m.workReady:
			// A fetch finished or the watermark moved; loop restarts
		}
	}
}

// fetch runs one fetch for seq and records the outcome in the state.
func (m *Manager) fetch(ctx context.Context, seq uint64) {
	fatal := false
	defer func() {
		// A sequence that exhausted its budget stays claimed so it is not re-dispatched.
		if !fatal {
			m.state.UnsetInflight(seq)
		}
		m.workerSem.Release(1)
		m.metrics.DecFetchInFlight()
		m.inflight.Done()
		m.signalWorkReady()
	}()

	payload, err := m.fetcher.Fetch(ctx, seq)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.log.Warnw("failed fetching checkpoint", "sequence", seq, "error", err)
		fatal = m.handleFailure(seq, err)
		return
	}

	if err := m.state.MarkFetched(seq, payload); err != nil {
		m.log.Warnw("failed to mark fetched", "sequence", seq, "error", err)
		fatal = m.handleFailure(seq, err)
		return
	}
	m.state.ResetFailureCount(seq)
	m.signalFetched()
}

// deliver hands contiguous payloads at the watermark to the handler, one at a time.
func (m *Manager) deliver(ctx context.Context) error {
	for {
		if m.state.Done() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		seq, payload, ok := m.state.Peek()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-m.fetchedReady:
			}
			continue
		}

		if err := m.handler(ctx, seq, payload); err != nil {
			return fmt.Errorf("handle sequence %d: %w", seq, err)
		}
		next, err := m.state.Advance()
		if err != nil {
			return err
		}
		highest, _ := m.state.GetHighest()
		m.metrics.CommitCheckpoints(1, next, highest, m.state.Buffered())
		m.signalWorkReady()
	}
}

// handleFailure increments the failure count for seq and reports it once the
// threshold is reached. Returns true when the threshold was reached.
func (m *Manager) handleFailure(seq uint64, err error) bool {
	failCount := m.state.IncrementFailureCount(seq)
	if failCount < m.maxFailures {
		return false
	}
	select {
	case m.failureChan <- &FetchFailedError{Sequence: seq, Attempts: failCount, Err: err}:
	default:
	}
	return true
}

func (m *Manager) updateWindowMetrics() {
	if m.metrics == nil {
		return
	}
	highest, _ := m.state.GetHighest()
	m.metrics.UpdateWindowMetrics(m.state.GetNext(), highest, m.state.Buffered())
}

func (m *Manager) signalWorkReady() {
	select {
	case m.workReady <- struct{}{}:
	default:
	}
}

func (m *Manager) signalFetched() {
	select {
	case m.fetchedReady <- struct{}{}:
	default:
	}
}
