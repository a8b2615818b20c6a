// Package postgres opens the pgx connection pool the sink loads into.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const defaultPingTimeout = 10 * time.Second

// New opens a pool and pings it. The caller owns the pool and must Close it.
func New(ctx context.Context, cfg Config, sugar *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if sugar == nil {
		return nil, errors.New("invalid logger: must not be nil")
	}
	pc, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			sugar.Errorw("failed to ping postgres", "code", pgErr.Code, "error", pgErr.Message)
		} else {
			sugar.Errorw("failed to ping postgres", "error", err)
		}
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	sugar.Infow("connected to postgres",
		"host", pc.ConnConfig.Host,
		"database", pc.ConnConfig.Database,
		"maxConns", pc.MaxConns,
	)
	return pool, nil
}
