package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ava-labs/checkpoint-indexer/pkg/events"
	"github.com/ava-labs/checkpoint-indexer/pkg/filter"
	"github.com/ava-labs/checkpoint-indexer/pkg/metrics"
)

const (
	createNFTTransactions = `CREATE TABLE IF NOT EXISTS nft_transactions (
	id BIGSERIAL PRIMARY KEY,
	checkpoint_sequence BIGINT NOT NULL,
	transaction_index INT NOT NULL,
	tx_sender TEXT NOT NULL,
	function_name TEXT NOT NULL,
	data JSONB NOT NULL,
	gas_cost JSONB NOT NULL,
	UNIQUE (checkpoint_sequence, transaction_index)
)`
	insertNFTTransaction = `INSERT INTO nft_transactions (checkpoint_sequence, transaction_index, tx_sender, function_name, data, gas_cost)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (checkpoint_sequence, transaction_index) DO NOTHING`
)

// Conn is a pooled connection.
type Conn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Release()
}

// ConnPool hands out connections. *pgxpool.Pool satisfies it through PoolOf.
type ConnPool interface {
	Acquire(ctx context.Context) (Conn, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxPool struct {
	*pgxpool.Pool
}

func (p pgxPool) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// PoolOf adapts a pgx pool to ConnPool.
func PoolOf(pool *pgxpool.Pool) ConnPool {
	return pgxPool{Pool: pool}
}

// Postgres loads records into the nft_transactions table, one transaction per
// batch. A record is keyed by its checkpoint and position; loading it again
// leaves the existing row alone.
type Postgres struct {
	log      *zap.SugaredLogger
	pool     ConnPool
	observer events.Observer
	metrics  *metrics.Metrics
}

// NewPostgres returns a loader over pool. observer and m may be nil.
func NewPostgres(log *zap.SugaredLogger, pool ConnPool, observer events.Observer, m *metrics.Metrics) (*Postgres, error) {
	if log == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	if pool == nil {
		return nil, errors.New("invalid pool: must not be nil")
	}
	return &Postgres{log: log, pool: pool, observer: observer, metrics: m}, nil
}

// Initialize creates nft_transactions if it does not exist.
func (p *Postgres) Initialize(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createNFTTransactions); err != nil {
		return fmt.Errorf("create nft_transactions table: %w", err)
	}
	return nil
}

// Load validates recs and inserts the valid ones in a single transaction.
func (p *Postgres) Load(ctx context.Context, recs []filter.MatchedRecord) (LoadResult, error) {
	start := time.Now()
	valid, rejected := partition(ctx, p.observer, recs)
	res := LoadResult{Rejected: rejected}
	if len(valid) == 0 {
		return res, nil
	}

	inserted, err := p.insert(ctx, valid)
	if err != nil {
		serr := &SinkError{Kind: Connection, Sequence: valid[0].CheckpointSequence, Err: err}
		p.metrics.RecordLoad(serr, 0, time.Since(start).Seconds())
		emitBatchFailed(ctx, p.observer, valid, serr)
		return res, serr
	}

	res.Inserted = int64(len(inserted))
	res.Duplicates = int64(len(valid) - len(inserted))
	p.metrics.RecordLoad(nil, res.Inserted, time.Since(start).Seconds())
	emitInserted(ctx, p.observer, inserted)
	p.log.Debugw("batch loaded",
		"sequence", valid[0].CheckpointSequence,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
		"rejected", len(rejected),
	)
	return res, nil
}

// insert writes recs in one transaction and returns those that were new.
func (p *Postgres) insert(ctx context.Context, recs []filter.MatchedRecord) ([]filter.MatchedRecord, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	// no-op once committed
	defer tx.Rollback(context.WithoutCancel(ctx)) //nolint:errcheck

	inserted := make([]filter.MatchedRecord, 0, len(recs))
	for _, rec := range recs {
		tag, err := tx.Exec(ctx, insertNFTTransaction,
			int64(rec.CheckpointSequence),
			rec.TransactionIndex,
			rec.Sender,
			rec.FunctionName,
			rec.Inputs,
			rec.GasCost,
		)
		if err != nil {
			return nil, fmt.Errorf("insert record from %s at checkpoint %d: %w", rec.Sender, rec.CheckpointSequence, err)
		}
		if tag.RowsAffected() > 0 {
			inserted = append(inserted, rec)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
