package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// DBTX is what the query functions need. Both *sqlx.DB and *sqlx.Tx
// satisfy it, so the same function runs inside or outside a transaction.
type DBTX interface {
	sqlx.ExtContext
}

// WithTx begins a transaction, runs fn with it, then commits on success or
// rolls back on error/panic. Panics are rethrown.
func WithTx(ctx context.Context, d *sqlx.DB, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := d.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}
