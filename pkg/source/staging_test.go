package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/store"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui"
	"github.com/ava-labs/checkpoint-indexer/pkg/sui/suitest"
)

func TestStaging(t *testing.T) {
	t.Parallel()
	st, err := store.New(t.TempDir(), "chk")
	require.NoError(t, err)
	var rec events.Recorder
	s := NewStaging(st, &rec)

	_, ok := s.LastStaged()
	assert.False(t, ok)

	seq := suitest.Sequence
	cp := suitest.Minting(seq, suitest.Address(0x42))
	require.NoError(t, s.Handle(t.Context(), seq, suitest.MustEncode(cp)))

	staged, err := st.Get(seq)
	require.NoError(t, err)
	got, err := sui.Decode(staged)
	require.NoError(t, err)
	assert.Equal(t, cp, got)

	require.Len(t, rec.OfKind(events.CheckpointStaged), 1)
	assert.Equal(t, int64(1), rec.OfKind(events.CheckpointStaged)[0].Count)
	last, ok := s.LastStaged()
	require.True(t, ok)
	assert.Equal(t, seq, last)
}

func TestStaging_LiveCheckpointIsStagedVerbatim(t *testing.T) {
	t.Parallel()
	st, err := store.New(t.TempDir(), "chk")
	require.NoError(t, err)
	s := NewStaging(st, nil)

	blob := suitest.Live(900, suitest.Address(0x42))
	require.NoError(t, s.Handle(t.Context(), 900, blob))

	staged, err := st.Get(900)
	require.NoError(t, err)
	assert.Equal(t, blob, staged)
}

func TestStaging_SkipsAndContinues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		seq     uint64
		payload []byte
		reason  string
	}{
		{
			name:    "malformed bytes",
			seq:     3,
			payload: []byte{0xff, 0x01},
			reason:  "malformed",
		},
		{
			name:    "sequence mismatch",
			seq:     4,
			payload: suitest.MustEncode(suitest.Checkpoint(5, suitest.Tx(suitest.Signed(suitest.Address(1), suitest.Inputs(), suitest.TransferObjects())))),
			reason:  "carries sequence number 5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, err := store.New(t.TempDir(), "chk")
			require.NoError(t, err)
			var rec events.Recorder
			s := NewStaging(st, &rec)

			require.NoError(t, s.Handle(t.Context(), tt.seq, tt.payload), "a bad checkpoint must not stop the stream")

			skipped := rec.OfKind(events.CheckpointSkipped)
			require.Len(t, skipped, 1)
			assert.Equal(t, tt.seq, skipped[0].Sequence)
			assert.Contains(t, skipped[0].Reason, tt.reason)

			_, err = st.Get(tt.seq)
			require.ErrorIs(t, err, store.ErrNotFound)
			_, ok := s.LastStaged()
			assert.False(t, ok, "skipped checkpoints are not staged")
		})
	}
}

func TestStaging_LastStagedTrailsSkips(t *testing.T) {
	t.Parallel()
	st, err := store.New(t.TempDir(), "chk")
	require.NoError(t, err)
	s := NewStaging(st, nil)

	require.NoError(t, s.Handle(t.Context(), 7, suitest.MustEncode(suitest.Minting(7, suitest.Address(1)))))
	require.NoError(t, s.Handle(t.Context(), 8, []byte{0xff}))

	last, ok := s.LastStaged()
	require.True(t, ok)
	assert.Equal(t, uint64(7), last)
}
