// Package xpgx runs squirrel builders on a pgx pool.
package xpgx

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is satisfied by both the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type Pool struct {
	*pgxpool.Pool
}

// Connect opens the pool and pings it, retrying while the database comes up.
func Connect(ctx context.Context, dsn string, maxConns int32, retries uint64) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	err = backoff.Retry(
		func() error { return pool.Ping(ctx) },
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retries),
			ctx,
		),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{pool}, nil
}

func (p *Pool) Execx(ctx context.Context, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	return Exec(ctx, p.Pool, sqlizer)
}

// InTx runs fn in a transaction, committing when fn returns nil.
func (p *Pool) InTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func Exec(ctx context.Context, q Querier, sqlizer sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("ToSql: %w", err)
	}
	return q.Exec(ctx, query, args...)
}

// Select scans every row into T by matching `db` tags to column names.
func Select[T any](ctx context.Context, q Querier, sqlizer sq.Sqlizer) ([]T, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ToSql: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
}

// Get scans exactly one row; pgx.ErrNoRows when there is none.
func Get[T any](ctx context.Context, q Querier, sqlizer sq.Sqlizer) (T, error) {
	var zero T

	query, args, err := sqlizer.ToSql()
	if err != nil {
		return zero, fmt.Errorf("ToSql: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return zero, err
	}

	return pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
}

// Scalars collects a single column.
func Scalars[T any](ctx context.Context, q Querier, sqlizer sq.Sqlizer) ([]T, error) {
	query, args, err := sqlizer.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ToSql: %w", err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[T])
}
