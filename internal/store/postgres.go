package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecashph/ecash/internal/apperr"
)

// Store is the Postgres persistence layer. Every mutating method runs
// its writes (record, children and audit entry) inside a single
// transaction; either all rows commit or none do.
type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewStore(connString string, log *slog.Logger) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{db: pool, log: log}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

// Pool exposes the underlying pool for the seeder's bulk CopyFrom.
func (s *Store) Pool() *pgxpool.Pool { return s.db }

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "tx begin failed")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.Internal, err, "tx commit failed")
	}
	return nil
}

// inReadTx runs fn inside a read-only transaction so multi-statement
// reads (count + page) see one consistent snapshot.
func (s *Store) inReadTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return apperr.Wrap(apperr.Internal, err, "tx begin failed")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// isUniqueViolation reports whether err is a Postgres duplicate-key
// error, optionally narrowed to one constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func internalErr(err error, op string) error {
	return apperr.Wrap(apperr.Internal, err, "%s failed", op)
}
