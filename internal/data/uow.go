package data

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// querier is the common surface of *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// q returns the transaction bound to ctx, or the bare handle.
func (db *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// insert runs an INSERT and returns the generated id on both drivers.
func (db *DB) insert(ctx context.Context, query string, args ...any) (int64, error) {
	if db.driver == "postgres" {
		var id int64
		err := db.q(ctx).QueryRowContext(ctx, db.rebind(query)+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	res, err := db.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UnitOfWork runs a function inside one transaction. Nested calls join the
// transaction already on the context.
type UnitOfWork struct {
	db *DB
}

// NewUnitOfWork builds a UnitOfWork over db.
func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do begins a transaction, binds it to the context passed to fn, and commits
// or rolls back on fn's result.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
