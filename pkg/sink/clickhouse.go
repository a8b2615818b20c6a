package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/clickhouse"
	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
)

// ClickHouse loads records into a ReplacingMergeTree table keyed by checkpoint
// and position, so rows loaded twice collapse into one on merge. ClickHouse has
// no transactions; a failed batch may leave a prefix of it inserted and the
// result reports how many rows made it.
type ClickHouse struct {
	log      *zap.SugaredLogger
	client   clickhouse.Client
	cluster  string
	table    string
	observer events.Observer
	metrics  *metrics.Metrics
}

// NewClickHouse returns a loader writing to database.table, created ON CLUSTER
// cluster when cluster is set.
func NewClickHouse(
	log *zap.SugaredLogger,
	client clickhouse.Client,
	cluster, database, table string,
	observer events.Observer,
	m *metrics.Metrics,
) (*ClickHouse, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if client == nil {
		return nil, errors.New("invalid client: must not be nil")
	}
	if table == "" {
		return nil, errors.New("invalid table: must not be empty")
	}
	if database != "" {
		table = database + "." + table
	}
	return &ClickHouse{log: log, client: client, cluster: cluster, table: table, observer: observer, metrics: m}, nil
}

func (c *ClickHouse) Initialize(ctx context.Context) error {
	onCluster := ""
	if c.cluster != "" {
		onCluster = " ON CLUSTER " + c.cluster
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s%s (
	checkpoint_sequence UInt64,
	transaction_index UInt32,
	tx_sender String,
	function_name LowCardinality(String),
	data String,
	gas_cost String,
	inserted_at DateTime64(3) DEFAULT now64(3)
) ENGINE = ReplacingMergeTree(inserted_at)
ORDER BY (checkpoint_sequence, transaction_index)`, c.table, onCluster)
	if err := c.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", c.table, err)
	}
	return nil
}

func (c *ClickHouse) insertQuery() string {
	return "INSERT INTO " + c.table + " (checkpoint_sequence, transaction_index, tx_sender, function_name, data, gas_cost) VALUES (?, ?, ?, ?, ?, ?)"
}

func (c *ClickHouse) Load(ctx context.Context, recs []filter.MatchedRecord) (LoadResult, error) {
	start := time.Now()
	valid, rejected := partition(ctx, c.observer, recs)
	res := LoadResult{Rejected: rejected}
	if len(valid) == 0 {
		return res, nil
	}

	query := c.insertQuery()
	for i, rec := range valid {
		err := c.client.Conn().Exec(ctx, query,
			rec.CheckpointSequence,
			uint32(rec.TransactionIndex),
			rec.Sender,
			rec.FunctionName,
			string(rec.Inputs),
			string(rec.GasCost),
		)
		if err != nil {
			serr := &SinkError{
				Kind:     Connection,
				Sequence: rec.CheckpointSequence,
				Err:      fmt.Errorf("insert record from %s at checkpoint %d: %w", rec.Sender, rec.CheckpointSequence, err),
			}
			res.Inserted = int64(i)
			c.metrics.RecordLoad(serr, res.Inserted, time.Since(start).Seconds())
			emitInserted(ctx, c.observer, valid[:i])
			emitBatchFailed(ctx, c.observer, valid[i:], serr)
			return res, serr
		}
	}

	res.Inserted = int64(len(valid))
	c.metrics.RecordLoad(nil, res.Inserted, time.Since(start).Seconds())
	emitInserted(ctx, c.observer, valid)
	c.log.Debugw("batch loaded", "sequence", valid[0].CheckpointSequence, "inserted", res.Inserted, "rejected", len(rejected))
	return res, nil
}
