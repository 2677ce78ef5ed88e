package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lottery/internal/observability/metrics"
	"lottery/internal/repository"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store wraps a pgx connection pool and exposes typed helpers.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

var _ repository.Store = (*Store)(nil)

// New creates a Store backed by a pgx pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Queries: &Queries{db: pool}, pool: pool}, nil
}

// Close releases underlying connections.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema guarantees required tables exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	defer observe("ensure_schema", time.Now())
	_, err := s.pool.Exec(ctx, schemaSQL)
	return err
}

// RunInTx executes fn within a transaction boundary.
func (s *Store) RunInTx(ctx context.Context, fn func(pgx.Tx) error) error {
	defer observe("run_in_tx", time.Now())
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// InTx runs fn against a transaction-scoped Queries. Single-row reads made
// through it take row locks so concurrent transitions on the same rows
// serialize.
func (s *Store) InTx(ctx context.Context, fn func(repository.Repository) error) error {
	return s.RunInTx(ctx, func(tx pgx.Tx) error {
		return fn(&Queries{db: tx, lock: true})
	})
}

func observe(operation string, start time.Time) {
	metrics.ObserveDBOperation(operation, time.Since(start))
}

func notFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
