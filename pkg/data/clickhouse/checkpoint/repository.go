// Package checkpoint stores stream cursors in ClickHouse.
package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/checkpoint-indexer/pkg/checkpointer"
	"github.com/ava-labs/checkpoint-indexer/pkg/clickhouse"
)

// Cursor is one persisted row. Timestamp is the ReplacingMergeTree version column.
type Cursor struct {
	Stream    string
	Next      uint64
	Timestamp int64
}

// Repository is a ClickHouse-backed checkpointer.Checkpointer.
type Repository struct {
	client    clickhouse.Client
	cluster   string // optional; adds ON CLUSTER to DDL
	database  string
	tableName string
}

var _ checkpointer.Checkpointer = (*Repository)(nil)

// NewRepository returns a Repository. Call Initialize before first use.
func NewRepository(client clickhouse.Client, cluster, database, tableName string) (*Repository, error) {
	if client == nil {
		return nil, errors.New("invalid client: must not be nil")
	}
	if database == "" || tableName == "" {
		return nil, errors.New("invalid table: database and table name must not be empty")
	}
	return &Repository{client: client, cluster: cluster, database: database, tableName: tableName}, nil
}

func (r *Repository) table() string {
	return r.database + "." + r.tableName
}

func (r *Repository) onCluster() string {
	if r.cluster == "" {
		return ""
	}
	return " ON CLUSTER " + r.cluster
}

// Initialize ensures the cursor table exists.
// Schema:
//   - stream: String (sorting key)
//   - next_sequence: UInt64
//   - timestamp: Int64 (ReplacingMergeTree version)
func (r *Repository) Initialize(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s%s (
    stream String,
    next_sequence UInt64,
    timestamp Int64
) ENGINE = ReplacingMergeTree(timestamp)
ORDER BY stream`, r.table(), r.onCluster())
	if err := r.client.Conn().Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create checkpoints table: %w", err)
	}
	return nil
}

// Write inserts a new cursor row; the newest timestamp wins on read.
func (r *Repository) Write(ctx context.Context, stream string, next uint64) error {
	query := fmt.Sprintf("INSERT INTO %s (stream, next_sequence, timestamp) VALUES (?, ?, ?)", r.table())
	if err := r.client.Conn().Exec(ctx, query, stream, next, time.Now().UnixNano()); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// Read returns the newest cursor for stream.
func (r *Repository) Read(ctx context.Context, stream string) (uint64, bool, error) {
	c, err := r.ReadCursor(ctx, stream)
	if err != nil || c == nil {
		return 0, false, err
	}
	return c.Next, true, nil
}

// ReadCursor returns the newest cursor row for stream, or nil when none exists.
func (r *Repository) ReadCursor(ctx context.Context, stream string) (*Cursor, error) {
	query := fmt.Sprintf(
		"SELECT stream, next_sequence, timestamp FROM %s WHERE stream = ? ORDER BY timestamp DESC LIMIT 1",
		r.table(),
	)
	var c Cursor
	err := r.client.Conn().QueryRow(ctx, query, stream).Scan(&c.Stream, &c.Next, &c.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	return &c, nil
}

// Delete removes every cursor row for stream.
func (r *Repository) Delete(ctx context.Context, stream string) error {
	query := fmt.Sprintf("ALTER TABLE %s%s DELETE WHERE stream = ?", r.table(), r.onCluster())
	if err := r.client.Conn().Exec(ctx, query, stream); err != nil {
		return fmt.Errorf("failed to delete checkpoints: %w", err)
	}
	return nil
}
