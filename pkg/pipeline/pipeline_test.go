package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
	"github.com/ava-labs/checkpoint-indexer/pkg/sink"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui/suitest"
)

// fakeLoader keys rows by checkpoint and position like the real sinks do.
// With err set it fails every batch starting at failFrom or later.
type fakeLoader struct {
	mu       sync.Mutex
	batches  [][]filter.MatchedRecord
	seen     map[[2]uint64]bool
	err      error
	failFrom uint64
}

func (f *fakeLoader) Initialize(context.Context) error { return nil }

func (f *fakeLoader) Load(_ context.Context, recs []filter.MatchedRecord) (sink.LoadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && recs[0].CheckpointSequence >= f.failFrom {
		return sink.LoadResult{}, &sink.SinkError{Kind: sink.Connection, Err: f.err}
	}
	if f.seen == nil {
		f.seen = map[[2]uint64]bool{}
	}
	var res sink.LoadResult
	fresh := make([]filter.MatchedRecord, 0, len(recs))
	for _, r := range recs {
		key := [2]uint64{r.CheckpointSequence, uint64(r.TransactionIndex)}
		if f.seen[key] {
			res.Duplicates++
			continue
		}
		f.seen[key] = true
		fresh = append(fresh, r)
	}
	f.batches = append(f.batches, fresh)
	res.Inserted = int64(len(fresh))
	return res, nil
}

func (f *fakeLoader) records() []filter.MatchedRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []filter.MatchedRecord
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

var target = sui.MustParseAddress(suitest.TargetPackage)

func mint(sender byte) sui.CheckpointTransaction {
	return suitest.Tx(suitest.Signed(suitest.Address(sender), suitest.Inputs(), suitest.MoveCall(target, "nft", "mint")))
}

func transfer() sui.CheckpointTransaction {
	return suitest.Tx(suitest.Signed(suitest.Address(0xee), suitest.Inputs(), suitest.TransferObjects()))
}

// stage writes checkpoints 10 (one match), 11 (none) and 12 (two matches)
// plus an undecodable 13.
func stage(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "chk"), "chk")
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, 10, suitest.MustEncode(suitest.Checkpoint(10, mint(1)))))
	require.NoError(t, st.Put(ctx, 11, suitest.MustEncode(suitest.Checkpoint(11, transfer()))))
	require.NoError(t, st.Put(ctx, 12, suitest.MustEncode(suitest.Checkpoint(12, mint(2), transfer(), mint(3)))))
	require.NoError(t, st.Put(ctx, 13, []byte{0xff, 0x01}))
	return st
}

func newPipeline(t *testing.T, o events.Observer, cfg Config) *Pipeline {
	t.Helper()
	p, err := New(zap.NewNop().Sugar(), o, nil, cfg)
	require.NoError(t, err)
	return p
}

func newEngine(t *testing.T) *filter.Engine {
	t.Helper()
	e, err := filter.New(zap.NewNop().Sugar(), suitest.TargetPackage)
	require.NoError(t, err)
	return e
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	_, err := New(nil, nil, nil, DefaultConfig())
	require.ErrorContains(t, err, "invalid logger")
	_, err = New(zap.NewNop().Sugar(), nil, nil, Config{BatchSize: 1})
	require.ErrorContains(t, err, "invalid workers")
	_, err = New(zap.NewNop().Sugar(), nil, nil, Config{Workers: 1})
	require.ErrorContains(t, err, "invalid batch size")
}

func TestTransform(t *testing.T) {
	t.Parallel()
	staged := stage(t)
	docs, err := store.New(filepath.Join(t.TempDir(), "json"), "json")
	require.NoError(t, err)
	rec := &events.Recorder{}

	stats, err := newPipeline(t, rec, DefaultConfig()).Transform(context.Background(), staged, docs)
	require.NoError(t, err)
	assert.Equal(t, Stats{Checkpoints: 4, Skipped: 1}, stats)

	seqs, err := docs.List()
	require.NoError(t, err)
	assert.Equal(t, []uint64{10, 11, 12}, seqs)
	for _, seq := range seqs {
		b, err := docs.Get(seq)
		require.NoError(t, err)
		cp, err := sui.FromStructured(sui.Document(b))
		require.NoError(t, err)
		assert.Equal(t, seq, cp.Sequence())
	}

	assert.Len(t, rec.OfKind(events.CheckpointTransformed), 3)
	skipped := rec.OfKind(events.CheckpointSkipped)
	require.Len(t, skipped, 1)
	assert.Equal(t, uint64(13), skipped[0].Sequence)
}

func TestCollectThenLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	docs, err := store.New(filepath.Join(t.TempDir(), "json"), "json")
	require.NoError(t, err)
	p := newPipeline(t, nil, Config{Workers: 1, BatchSize: 2})
	_, err = p.Transform(ctx, stage(t), docs)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "filtered_transactions.json")
	stats, err := p.Collect(ctx, docs, newEngine(t), out)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Checkpoints)
	assert.Equal(t, int64(3), stats.Matched)

	fts, err := ReadFiltered(out)
	require.NoError(t, err)
	require.Len(t, fts, 3)
	type pos struct {
		seq uint64
		idx int
	}
	var got []pos
	for _, ft := range fts {
		got = append(got, pos{ft.CheckpointSequence, ft.TransactionIndex})
	}
	assert.Equal(t, []pos{{10, 0}, {12, 0}, {12, 2}}, got)

	loader := &fakeLoader{}
	stats, err = p.Load(ctx, out, newEngine(t), loader)
	require.NoError(t, err)
	assert.Equal(t, Stats{Matched: 3, Inserted: 3}, stats)
	require.Len(t, loader.batches, 2, "batches of two")

	recs := loader.records()
	assert.Equal(t, suitest.Address(1).String(), recs[0].Sender)
	assert.Equal(t, suitest.Address(3).String(), recs[2].Sender)
	for _, r := range recs {
		assert.Equal(t, "mint", r.FunctionName)
		require.NoError(t, sink.Validate(r))
	}
}

func TestLoad_RejectsUnprojectable(t *testing.T) {
	t.Parallel()
	doc, err := sui.ToStructured(suitest.Minting(suitest.Sequence, suitest.Address(0x42)))
	require.NoError(t, err)
	fts := newEngine(t).Select(doc)
	require.Len(t, fts, 1)
	broken := fts[0]
	broken.Effects = nil
	out := filepath.Join(t.TempDir(), "f.json")
	require.NoError(t, WriteFiltered(out, []filter.FilteredTransaction{fts[0], broken}))

	rec := &events.Recorder{}
	loader := &fakeLoader{}
	stats, err := newPipeline(t, rec, DefaultConfig()).Load(context.Background(), out, newEngine(t), loader)
	require.NoError(t, err)
	assert.Equal(t, Stats{Matched: 2, Inserted: 1, Rejected: 1}, stats)
	rejected := rec.OfKind(events.RecordRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, suitest.Sequence, rejected[0].Sequence)
	require.NotNil(t, rejected[0].TransactionIndex)
	assert.Equal(t, 0, *rejected[0].TransactionIndex)
	assert.Contains(t, rejected[0].Path, "effects")
	assert.Contains(t, rejected[0].Reason, rejected[0].Path)
}

func TestProcess(t *testing.T) {
	t.Parallel()
	rec := &events.Recorder{}
	loader := &fakeLoader{}

	stats, err := newPipeline(t, rec, Config{Workers: 3, BatchSize: 10}).Process(context.Background(), stage(t), newEngine(t), loader)
	require.NoError(t, err)
	assert.Equal(t, Stats{Checkpoints: 4, Skipped: 1, Matched: 3, Inserted: 3}, stats)

	recs := loader.records()
	require.Len(t, recs, 3)
	assert.Equal(t, uint64(10), recs[0].CheckpointSequence)
	assert.Equal(t, uint64(12), recs[2].CheckpointSequence)
	assert.Len(t, rec.OfKind(events.RecordMatched), 3)
	assert.Equal(t, "mint", rec.OfKind(events.RecordMatched)[0].Function)
}

func TestProcess_ReportsUnprojectableMatches(t *testing.T) {
	t.Parallel()
	// The call into the target sits in the second data entry; the first is a
	// system transaction with no inputs to project.
	system := suitest.Signed(suitest.Address(0x0c), nil)
	system.IntentMessage.Value.V1.Kind = sui.TransactionKind{RandomnessStateUpdate: &sui.RandomnessStateUpdate{
		Epoch:       1,
		RandomBytes: sui.Bytes{0x01},
	}}
	entries := suitest.Tx(system, suitest.Signed(suitest.Address(0x0d), suitest.Inputs(), suitest.MoveCall(target, "nft", "mint")))

	st, err := store.New(filepath.Join(t.TempDir(), "chk"), "chk")
	require.NoError(t, err)
	require.NoError(t, st.Put(context.Background(), 20, suitest.MustEncode(suitest.Checkpoint(20, mint(1), entries))))

	rec := &events.Recorder{}
	loader := &fakeLoader{}
	stats, err := newPipeline(t, rec, DefaultConfig()).Process(context.Background(), st, newEngine(t), loader)
	require.NoError(t, err)
	assert.Equal(t, Stats{Checkpoints: 1, Matched: 2, Inserted: 1, Rejected: 1}, stats)

	rejected := rec.OfKind(events.RecordRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, uint64(20), rejected[0].Sequence)
	require.NotNil(t, rejected[0].TransactionIndex)
	assert.Equal(t, 1, *rejected[0].TransactionIndex)
	assert.Contains(t, rejected[0].Path, "<ProgrammableTransaction>")
}

func TestProcess_TwiceLoadsOnce(t *testing.T) {
	t.Parallel()
	st := stage(t)
	loader := &fakeLoader{}
	p := newPipeline(t, nil, Config{Workers: 2, BatchSize: 2})

	_, err := p.Process(context.Background(), st, newEngine(t), loader)
	require.NoError(t, err)
	stats, err := p.Process(context.Background(), st, newEngine(t), loader)
	require.NoError(t, err)
	assert.Zero(t, stats.Inserted)
	assert.Equal(t, int64(3), stats.Duplicates)
	assert.Len(t, loader.records(), 3)
}

func TestProcess_SinkFailureIsReturned(t *testing.T) {
	t.Parallel()
	loader := &fakeLoader{err: errors.New("connection refused")}

	stats, err := newPipeline(t, nil, DefaultConfig()).Process(context.Background(), stage(t), newEngine(t), loader)
	require.Error(t, err)
	assert.True(t, sink.IsConnection(err))
	assert.Zero(t, stats.Inserted)
	assert.Equal(t, int64(3), stats.Matched)

	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	_, ok := lerr.LastCommitted()
	assert.True(t, ok, "checkpoints below the first record have nothing to commit")
	assert.Equal(t, uint64(10), lerr.ResumeFrom)
}

func TestProcess_SinkFailureNamesLastCommittedCheckpoint(t *testing.T) {
	t.Parallel()
	loader := &fakeLoader{err: errors.New("connection refused"), failFrom: 12}

	stats, err := newPipeline(t, nil, Config{Workers: 1, BatchSize: 1}).Process(context.Background(), stage(t), newEngine(t), loader)
	require.Error(t, err)
	assert.Equal(t, int64(1), stats.Inserted)

	var lerr *LoadError
	require.ErrorAs(t, err, &lerr)
	last, ok := lerr.LastCommitted()
	require.True(t, ok)
	assert.Equal(t, uint64(11), last)
	assert.ErrorContains(t, err, "last committed checkpoint 11")
	assert.True(t, sink.IsConnection(err))

	// A rerun after the sink recovers fills in the rest without duplicating checkpoint 10.
	loader.mu.Lock()
	loader.err = nil
	loader.mu.Unlock()
	stats, err = newPipeline(t, nil, Config{Workers: 1, BatchSize: 1}).Process(context.Background(), stage(t), newEngine(t), loader)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Inserted)
	assert.Equal(t, int64(1), stats.Duplicates)
	assert.Len(t, loader.records(), 3)
}

func TestProcess_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader := &fakeLoader{}
	_, err := newPipeline(t, nil, DefaultConfig()).Process(ctx, stage(t), newEngine(t), loader)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, loader.records())
}

func TestFilteredFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "filtered_transactions.json")
	require.NoError(t, WriteFiltered(path, nil))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))

	fts, err := ReadFiltered(path)
	require.NoError(t, err)
	assert.Empty(t, fts)

	_, err = ReadFiltered(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "read filtered transactions")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o600))
	_, err = ReadFiltered(bad)
	require.ErrorContains(t, err, "parse")
}
