package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// maxTxRetries bounds the internal retry loop for conflicting transactions
const maxTxRetries = 3

// TransactionManager manages database transactions via context injection.
// All stock-affecting writes run through RunInTx so that a state change and
// its inventory deltas commit as one atomic unit.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx executes fn inside a transaction. On a serialization failure or
// deadlock the whole body is re-run (reads included), up to maxTxRetries.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return runWithRetry(func() error {
		return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			txCtx := context.WithValue(ctx, txKey, tx)
			return fn(txCtx)
		})
	})
}

func runWithRetry(attempt func() error) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = attempt()
		if err == nil || !isRetryableConflict(err) {
			return err
		}
	}
	return err
}

// isRetryableConflict matches SQLSTATE 40001 (serialization_failure) and
// 40P01 (deadlock_detected). Partial retries would re-use stale reads, so
// only the full body is ever retried.
func isRetryableConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
