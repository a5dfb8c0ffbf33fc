package db

import (
	"context"
	"database/sql"
)

// Querier is the subset of *sql.DB and *sql.Tx that repositories use.
// Repositories resolve it per call via Conn so the same code runs inside
// or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction carried by ctx if RunInTx started one,
// otherwise the fallback database handle.
func Conn(ctx context.Context, fallback *sql.DB) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return fallback
}

// TxManager runs functions inside a single database transaction.
type TxManager struct {
	db *sql.DB
}

// NewTxManager returns a TxManager over the given database handle.
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// RunInTx begins a ReadCommitted transaction, injects it into ctx, and runs fn.
// The transaction commits only if fn returns nil; any error or panic rolls back
// the whole unit so no partial state is left behind.
func (tm *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := tm.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		}
	}()

	ctx = context.WithValue(ctx, txKey{}, tx)

	err = fn(ctx)
	if err != nil {
		return err
	}

	return tx.Commit()
}
