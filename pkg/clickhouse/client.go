// Package clickhouse opens pooled ClickHouse connections for the record sink
// and the cursor repository.
package clickhouse

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Client is a live connection. Conn is exposed for Exec, Query and QueryRow.
type Client interface {
	Conn() driver.Conn
	Ping(ctx context.Context) error
	Close() error
}

const pingTimeout = 10 * time.Second

// Options translates cfg into driver options. Debug output goes to sugar when
// both cfg.Debug is set and sugar is non-nil.
func (c Config) Options(sugar *zap.SugaredLogger) *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr: c.Hosts,
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": c.MaxExecutionTime,
			"max_block_size":     c.MaxBlockSize,
		},
		Compression:          &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		DialTimeout:          time.Duration(c.DialTimeout) * time.Second,
		MaxOpenConns:         c.MaxOpenConns,
		MaxIdleConns:         c.MaxIdleConns,
		ConnMaxLifetime:      time.Duration(c.ConnMaxLifetime) * time.Minute,
		ConnOpenStrategy:     clickhouse.ConnOpenInOrder,
		BlockBufferSize:      uint8(c.BlockBufferSize), //nolint:gosec // bounded by Load
		MaxCompressionBuffer: c.MaxCompressionBuffer,
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{
				{Name: c.ClientName, Version: c.ClientVersion},
			},
		},
		TLS: &tls.Config{
			//nolint:gosec // configurable for local clusters with self-signed certificates
			InsecureSkipVerify: c.InsecureSkipVerify,
		},
	}
	if c.Debug && sugar != nil {
		opts.Debugf = sugar.Debugf
	}
	return opts
}

// New opens a connection and pings it. A failed ping is fatal to the caller:
// neither the sink nor the cursor store can run without ClickHouse.
func New(cfg Config, sugar *zap.SugaredLogger) (Client, error) {
	conn, err := clickhouse.Open(cfg.Options(sugar))
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.Ping(ctx); err != nil {
		logPingFailure(sugar, err)
		_ = conn.Close()
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}

	if sugar != nil {
		sugar.Infow("connected to clickhouse", "hosts", cfg.Hosts, "database", cfg.Database)
	}
	return NewWithConn(conn), nil
}

func logPingFailure(sugar *zap.SugaredLogger, err error) {
	if sugar == nil {
		return
	}
	var exception *clickhouse.Exception
	if errors.As(err, &exception) {
		sugar.Errorw("failed to ping ClickHouse", "code", exception.Code, "error", exception.Message)
		return
	}
	sugar.Errorw("failed to ping ClickHouse", "error", err)
}

// NewWithConn wraps an already opened connection, such as mocks.MockConn in tests.
func NewWithConn(conn driver.Conn) Client {
	return &client{conn: conn}
}

type client struct {
	conn driver.Conn
}

func (c *client) Conn() driver.Conn { return c.conn }

func (c *client) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

func (c *client) Close() error { return c.conn.Close() }
