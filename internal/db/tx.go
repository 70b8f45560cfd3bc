package db

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// WithinTx runs fn inside a single transaction: commit if fn returns nil,
// rollback otherwise. The pgx.Tx passed to fn satisfies Querier, so service
// code reads and writes through it unchanged.
func WithinTx(ctx context.Context, pool Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}
