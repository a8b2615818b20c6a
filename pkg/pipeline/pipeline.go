// Package pipeline runs the batch passes over staged checkpoints: transform
// (binary to structured), collect (filter into a file), load (file into the
// sink) and process (all of it in memory).
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
	"github.com/ava-labs/checkpoint-indexer/pkg/sink"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
)

// Config bounds a pass.
type Config struct {
	Workers   int // checkpoints or batches handled concurrently
	BatchSize int // records per sink Load
}

// DefaultConfig returns the settings used when none are given.
func DefaultConfig() Config {
	return Config{Workers: 5, BatchSize: 100}
}

// Stats summarises a pass.
type Stats struct {
	Checkpoints int64 // checkpoints read
	Skipped     int64 // checkpoints that could not be read or decoded
	Matched     int64 // transactions selected by the filter
	Inserted    int64
	Duplicates  int64 // records the sink already held
	Rejected    int64
}

type counters struct {
	checkpoints, skipped, matched, inserted, duplicates, rejected atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Checkpoints: c.checkpoints.Load(),
		Skipped:     c.skipped.Load(),
		Matched:     c.matched.Load(),
		Inserted:    c.inserted.Load(),
		Duplicates:  c.duplicates.Load(),
		Rejected:    c.rejected.Load(),
	}
}

// Pipeline runs passes. It holds no state between them.
type Pipeline struct {
	log      *zap.SugaredLogger
	observer events.Observer
	metrics  *metrics.Metrics
	cfg      Config
}

// New validates cfg. observer and m may be nil.
func New(log *zap.SugaredLogger, observer events.Observer, m *metrics.Metrics, cfg Config) (*Pipeline, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if cfg.Workers <= 0 {
		return nil, errors.New("invalid workers: must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("invalid batch size: must be > 0")
	}
	return &Pipeline{log: log, observer: observer, metrics: m, cfg: cfg}, nil
}

func (p *Pipeline) skip(ctx context.Context, c *counters, seq uint64, err error) {
	c.skipped.Add(1)
	events.Emit(ctx, p.observer, events.Event{Kind: events.CheckpointSkipped, Sequence: seq, Err: err})
}

// reject counts a matched transaction that could not become a record.
func (p *Pipeline) reject(ctx context.Context, c *counters, r filter.Rejection) {
	c.rejected.Add(1)
	idx := r.TransactionIndex
	events.Emit(ctx, p.observer, events.Event{
		Kind:             events.RecordRejected,
		Sequence:         r.CheckpointSequence,
		TransactionIndex: &idx,
		Path:             r.Path,
		Err:              r.Err,
	})
}

// forEach runs fn for every sequence with at most Workers in flight. fn
// returns an error only to abort the pass.
func (p *Pipeline) forEach(ctx context.Context, seqs []uint64, fn func(ctx context.Context, i int, seq uint64) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, seq := range seqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return fn(gctx, i, seq) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// decode reads and decodes one staged checkpoint. Failures other than
// cancellation are reported as skips and yield nil.
func (p *Pipeline) decode(ctx context.Context, c *counters, staged *store.Store, seq uint64) (*sui.CheckpointData, error) {
	c.checkpoints.Add(1)
	b, err := staged.Get(seq)
	if err != nil {
		p.skip(ctx, c, seq, err)
		return nil, nil
	}
	cp, err := sui.Decode(b)
	if err != nil {
		p.skip(ctx, c, seq, err)
		return nil, nil
	}
	return cp, ctx.Err()
}

// Transform writes the structured document of every staged checkpoint to docs.
func (p *Pipeline) Transform(ctx context.Context, staged, docs *store.Store) (Stats, error) {
	var c counters
	seqs, err := staged.List()
	if err != nil {
		return Stats{}, err
	}
	err = p.forEach(ctx, seqs, func(ctx context.Context, _ int, seq uint64) error {
		cp, err := p.decode(ctx, &c, staged, seq)
		if cp == nil || err != nil {
			return err
		}
		doc, err := sui.ToStructured(cp)
		if err != nil {
			p.skip(ctx, &c, seq, err)
			return nil
		}
		if err := docs.Put(ctx, seq, doc); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.skip(ctx, &c, seq, err)
			return nil
		}
		events.Emit(ctx, p.observer, events.Event{
			Kind:     events.CheckpointTransformed,
			Sequence: seq,
			Count:    int64(len(cp.Transactions)),
		})
		return nil
	})
	stats := c.snapshot()
	p.log.Infow("transform finished", "checkpoints", stats.Checkpoints, "skipped", stats.Skipped)
	return stats, err
}

// Collect selects matching transactions from every document in docs and
// writes them, ordered by checkpoint and position, to out.
func (p *Pipeline) Collect(ctx context.Context, docs *store.Store, engine *filter.Engine, out string) (Stats, error) {
	var c counters
	seqs, err := docs.List()
	if err != nil {
		return Stats{}, err
	}
	selected := make([][]filter.FilteredTransaction, len(seqs))
	err = p.forEach(ctx, seqs, func(ctx context.Context, i int, seq uint64) error {
		c.checkpoints.Add(1)
		doc, err := docs.Get(seq)
		if err != nil {
			p.skip(ctx, &c, seq, err)
			return nil
		}
		selected[i] = engine.Select(sui.Document(doc))
		return nil
	})
	if err != nil {
		return c.snapshot(), err
	}

	var all []filter.FilteredTransaction
	for _, fts := range selected {
		for _, ft := range fts {
			c.matched.Add(1)
			events.Emit(ctx, p.observer, events.Event{Kind: events.RecordMatched, Sequence: ft.CheckpointSequence})
		}
		all = append(all, fts...)
	}
	if err := WriteFiltered(out, all); err != nil {
		return c.snapshot(), err
	}
	stats := c.snapshot()
	p.log.Infow("collect finished", "checkpoints", stats.Checkpoints, "matched", stats.Matched, "output", out)
	return stats, nil
}

// Load projects the transactions in the filtered file in and loads them.
// Transactions whose sender, inputs or gas cost cannot be resolved are
// rejected.
func (p *Pipeline) Load(ctx context.Context, in string, engine *filter.Engine, loader sink.Loader) (Stats, error) {
	var c counters
	fts, err := ReadFiltered(in)
	if err != nil {
		return Stats{}, err
	}
	recs := make([]filter.MatchedRecord, 0, len(fts))
	for _, ft := range fts {
		c.matched.Add(1)
		rec, err := engine.Project(ft)
		if err != nil {
			p.reject(ctx, &c, filter.RejectionOf(ft, err))
			continue
		}
		recs = append(recs, rec)
	}
	err = p.loadBatches(ctx, &c, loader, recs)
	stats := c.snapshot()
	p.log.Infow("load finished", "records", stats.Matched, "inserted", stats.Inserted, "rejected", stats.Rejected)
	return stats, err
}

// Process decodes, filters and loads every staged checkpoint without writing
// intermediate files.
func (p *Pipeline) Process(ctx context.Context, staged *store.Store, engine *filter.Engine, loader sink.Loader) (Stats, error) {
	var c counters
	seqs, err := staged.List()
	if err != nil {
		return Stats{}, err
	}
	matched := make([][]filter.MatchedRecord, len(seqs))
	rejected := make([][]filter.Rejection, len(seqs))
	err = p.forEach(ctx, seqs, func(ctx context.Context, i int, seq uint64) error {
		start := time.Now()
		cp, err := p.decode(ctx, &c, staged, seq)
		if cp == nil || err != nil {
			return err
		}
		doc, err := sui.ToStructured(cp)
		if err != nil {
			p.skip(ctx, &c, seq, err)
			return nil
		}
		matched[i], rejected[i] = engine.Filter(doc)
		p.metrics.ObserveCheckpointProcessingDuration(time.Since(start).Seconds())
		return nil
	})
	if err != nil {
		return c.snapshot(), err
	}

	var recs []filter.MatchedRecord
	for i, rs := range matched {
		for _, r := range rejected[i] {
			c.matched.Add(1)
			p.reject(ctx, &c, r)
		}
		for _, r := range rs {
			c.matched.Add(1)
			events.Emit(ctx, p.observer, events.Event{
				Kind:     events.RecordMatched,
				Sequence: r.CheckpointSequence,
				Sender:   r.Sender,
				Function: r.FunctionName,
			})
		}
		recs = append(recs, rs...)
	}
	err = p.loadBatches(ctx, &c, loader, recs)
	stats := c.snapshot()
	p.log.Infow("process finished",
		"checkpoints", stats.Checkpoints,
		"skipped", stats.Skipped,
		"matched", stats.Matched,
		"inserted", stats.Inserted,
		"duplicates", stats.Duplicates,
		"rejected", stats.Rejected,
	)
	return stats, err
}

// LoadError stops a pass part way through loading. Every record of a
// checkpoint below ResumeFrom is committed; records from ResumeFrom on may or
// may not be. Loaders skip rows they already hold, so rerunning the pass is
// safe.
type LoadError struct {
	ResumeFrom uint64
	Err        error
}

func (e *LoadError) Error() string {
	if last, ok := e.LastCommitted(); ok {
		return fmt.Sprintf("load stopped, last committed checkpoint %d: %v", last, e.Err)
	}
	return fmt.Sprintf("load stopped before any checkpoint was committed: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LastCommitted returns the highest checkpoint whose records are all
// committed.
func (e *LoadError) LastCommitted() (uint64, bool) {
	if e.ResumeFrom == 0 {
		return 0, false
	}
	return e.ResumeFrom - 1, true
}

// loadBatches loads recs, ordered by checkpoint, in BatchSize chunks, Workers
// at a time. The first connection-level failure cancels the remaining batches
// and is returned as a *LoadError.
func (p *Pipeline) loadBatches(ctx context.Context, c *counters, loader sink.Loader, recs []filter.MatchedRecord) error {
	var batches [][]filter.MatchedRecord
	for start := 0; start < len(recs); start += p.cfg.BatchSize {
		batches = append(batches, recs[start:min(start+p.cfg.BatchSize, len(recs))])
	}
	done := make([]bool, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, batch := range batches {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res, err := loader.Load(gctx, batch)
			c.inserted.Add(res.Inserted)
			c.duplicates.Add(res.Duplicates)
			c.rejected.Add(int64(len(res.Rejected)))
			done[i] = err == nil
			return err
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		return nil
	}
	for i, ok := range done {
		if !ok {
			return &LoadError{ResumeFrom: batches[i][0].CheckpointSequence, Err: err}
		}
	}
	return err
}
