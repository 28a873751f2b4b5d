package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictErr(code string) error {
	return &pgconn.PgError{Code: code, Message: "conflict"}
}

func TestIsRetryableConflict(t *testing.T) {
	assert.True(t, isRetryableConflict(conflictErr("40001")))
	assert.True(t, isRetryableConflict(conflictErr("40P01")))
	assert.True(t, isRetryableConflict(fmt.Errorf("tx failed: %w", conflictErr("40001"))))

	assert.False(t, isRetryableConflict(conflictErr("23505")))
	assert.False(t, isRetryableConflict(errors.New("connection reset")))
	assert.False(t, isRetryableConflict(nil))
}

func TestRunWithRetry_RetriesConflictsUntilSuccess(t *testing.T) {
	attempts := 0

	err := runWithRetry(func() error {
		attempts++
		if attempts < 3 {
			return conflictErr("40001")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRunWithRetry_GivesUpAfterBound(t *testing.T) {
	attempts := 0

	err := runWithRetry(func() error {
		attempts++
		return conflictErr("40P01")
	})

	require.Error(t, err)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "40P01", pgErr.Code)
	assert.Equal(t, maxTxRetries, attempts)
}

func TestRunWithRetry_NonRetryableReturnsImmediately(t *testing.T) {
	attempts := 0
	sentinel := errors.New("unique constraint violation")

	err := runWithRetry(func() error {
		attempts++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}
