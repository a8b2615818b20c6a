package sink

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/clickhouse"
	"github.com/ava-labs/checkpoint-indexer/pkg/clickhouse/mocks"
	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
)

const chInsert = "INSERT INTO sui.nft_transactions (checkpoint_sequence, transaction_index, tx_sender, function_name, data, gas_cost) VALUES (?, ?, ?, ?, ?, ?)"

func newClickHouse(t *testing.T, conn *mocks.MockConn, cluster string, o events.Observer) *ClickHouse {
	t.Helper()
	l, err := NewClickHouse(zap.NewNop().Sugar(), clickhouse.NewWithConn(conn), cluster, "sui", "nft_transactions", o, nil)
	require.NoError(t, err)
	return l
}

func TestNewClickHouse_Validation(t *testing.T) {
	t.Parallel()
	c := clickhouse.NewWithConn(&mocks.MockConn{})
	_, err := NewClickHouse(nil, c, "", "sui", "t", nil, nil)
	require.ErrorContains(t, err, "invalid logger")
	_, err = NewClickHouse(zap.NewNop().Sugar(), nil, "", "sui", "t", nil, nil)
	require.ErrorContains(t, err, "invalid client")
	_, err = NewClickHouse(zap.NewNop().Sugar(), c, "", "sui", "", nil, nil)
	require.ErrorContains(t, err, "invalid table")

	l, err := NewClickHouse(zap.NewNop().Sugar(), c, "", "", "t", nil, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l.insertQuery(), "INSERT INTO t ("))
}

func TestClickHouse_Initialize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cluster string
		want    string
	}{
		{name: "single node", want: "CREATE TABLE IF NOT EXISTS sui.nft_transactions ("},
		{name: "cluster", cluster: "main", want: "CREATE TABLE IF NOT EXISTS sui.nft_transactions ON CLUSTER main ("},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			conn := &mocks.MockConn{}
			conn.On("Exec", mock.Anything, mock.MatchedBy(func(q string) bool {
				return strings.HasPrefix(q, tt.want) && strings.Contains(q, "ENGINE = ReplacingMergeTree(inserted_at)") &&
					strings.Contains(q, "ORDER BY (checkpoint_sequence, transaction_index)")
			})).Return(nil).Once()

			require.NoError(t, newClickHouse(t, conn, tt.cluster, nil).Initialize(context.Background()))
			conn.AssertExpectations(t)
		})
	}
}

func TestClickHouse_InitializeError(t *testing.T) {
	t.Parallel()
	conn := &mocks.MockConn{}
	conn.On("Exec", mock.Anything, mock.Anything).Return(errors.New("readonly")).Once()

	err := newClickHouse(t, conn, "", nil).Initialize(context.Background())
	require.ErrorContains(t, err, "create sui.nft_transactions table: readonly")
}

func TestClickHouse_Load(t *testing.T) {
	t.Parallel()
	conn := &mocks.MockConn{}
	rec := &events.Recorder{}
	l := newClickHouse(t, conn, "", rec)

	first := record(20, "0x01")
	first.TransactionIndex = 3
	bad := record(20, "0x02")
	bad.GasCost = []byte(`[]`)
	conn.On("Exec", mock.Anything, chInsert,
		uint64(20), uint32(3), "0x01", "mint", string(first.Inputs), string(first.GasCost),
	).Return(nil).Once()

	res, err := l.Load(context.Background(), []filter.MatchedRecord{first, bad})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)
	require.Len(t, res.Rejected, 1)
	assert.ErrorIs(t, res.Rejected[0], ErrGasCostNotObject)
	assert.Len(t, rec.OfKind(events.RecordInserted), 1)
	assert.Len(t, rec.OfKind(events.RecordRejected), 1)
	conn.AssertExpectations(t)
}

func TestClickHouse_LoadStopsAtFirstFailure(t *testing.T) {
	t.Parallel()
	conn := &mocks.MockConn{}
	rec := &events.Recorder{}
	l := newClickHouse(t, conn, "", rec)

	conn.On("Exec", mock.Anything, chInsert,
		uint64(30), uint32(0), "0x01", "mint", mock.Anything, mock.Anything,
	).Return(nil).Once()
	conn.On("Exec", mock.Anything, chInsert,
		uint64(31), uint32(0), "0x02", "mint", mock.Anything, mock.Anything,
	).Return(errors.New("broken pipe")).Once()

	recs := []filter.MatchedRecord{record(30, "0x01"), record(31, "0x02"), record(32, "0x03")}
	res, err := l.Load(context.Background(), recs)
	require.Error(t, err)
	assert.True(t, IsConnection(err))
	assert.ErrorContains(t, err, "broken pipe")
	assert.Equal(t, int64(1), res.Inserted)

	assert.Len(t, rec.OfKind(events.RecordInserted), 1)
	failed := rec.OfKind(events.BatchFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, uint64(31), failed[0].Sequence)
	assert.Equal(t, int64(2), failed[0].Count)
	conn.AssertExpectations(t)
}
