package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type transactionOptions struct {
	sql         sql.TxOptions
	lockTimeout time.Duration
}

type TransactionOption func(*transactionOptions)

func WithIsolationLevel(isolationLevel sql.IsolationLevel) TransactionOption {
	return func(opts *transactionOptions) {
		opts.sql.Isolation = isolationLevel
	}
}

func WithReadOnly() TransactionOption {
	return func(opts *transactionOptions) {
		opts.sql.ReadOnly = true
	}
}

// WithLockTimeout bounds how long any statement in the transaction waits for
// a row lock. Zero leaves the server default in place.
func WithLockTimeout(timeout time.Duration) TransactionOption {
	return func(opts *transactionOptions) {
		opts.lockTimeout = timeout
	}
}

// Tx runs transaction inside a database transaction. The transaction is
// committed when the callback returns nil and rolled back otherwise,
// including when the callback panics or the context is cancelled.
func Tx(
	ctx context.Context,
	db *sqlx.DB,
	transaction func(context.Context, *sqlx.Tx) error,
	opts ...TransactionOption,
) (err error) {
	options := transactionOptions{}

	for _, opt := range opts {
		opt(&options)
	}

	tx, err := db.BeginTxx(ctx, &options.sql)
	if err != nil {
		return ClassifyStoreError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = errors.Wrapf(rollbackErr, "transaction panicked with: %v", r)
			} else {
				err = fmt.Errorf("transaction panicked with: %v", r)
			}
		}
	}()

	if options.lockTimeout > 0 {
		// SET does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", options.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return ClassifyStoreError(err)
		}
	}

	err = transaction(ctx, tx)
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			Logger(ctx).Warn("transaction rollback failed", zap.Error(rollbackErr))
			return ClassifyStoreError(fmt.Errorf("%s: %w", rollbackErr.Error(), err))
		}

		Logger(ctx).Debug("transaction rolled back", zap.Error(err))
		return ClassifyStoreError(err)
	}

	err = tx.Commit()
	if err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			return ClassifyStoreError(fmt.Errorf("%s: %w", rollbackErr.Error(), err))
		}

		return ClassifyStoreError(err)
	}

	return nil
}
