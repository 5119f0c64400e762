// Package database wraps the PostgreSQL sink: connection pooling, schema
// introspection, bulk loading of analyzed files, and bounded execution of
// normalized queries.
package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/config"
)

// queryCanceled is the PostgreSQL error code raised when statement_timeout
// fires.
const queryCanceled = "57014"

// DB wraps a pgxpool connection pool. The pool carries a session-level
// statement_timeout so a pathological generated query cannot hang a request;
// backpressure from a saturated pool blocks the caller rather than queueing
// unbounded work.
type DB struct {
	*pgxpool.Pool
}

// NewConnection creates a connection pool from the database configuration.
func NewConnection(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns == 0 {
		poolConfig.MaxConns = 10
	}
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	timeoutMillis := int(cfg.StatementTimeout() / time.Millisecond)
	poolConfig.ConnConfig.RuntimeParams["statement_timeout"] = strconv.Itoa(timeoutMillis)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

// classifyExecError maps a sink failure onto the error taxonomy. A fired
// statement_timeout is a distinct condition from a rejected statement.
func classifyExecError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == queryCanceled {
		return apperrors.Wrap(apperrors.ClassQueryTimeout, err, "%s exceeded the statement timeout", operation)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.ClassQueryTimeout, err, "%s exceeded the statement timeout", operation)
	}
	return apperrors.Wrap(apperrors.ClassExecution, err, "%s failed", operation)
}
