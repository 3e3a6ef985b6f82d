package db_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/alexanderramin/railorder/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

// orderExists reads back an order row through the unit of work.
func orderExists(uow *db.SQLiteUnitOfWork, id string) (string, bool) {
	var name string
	var found bool
	_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		row := tx.QueryRowContext(ctx, `SELECT name FROM orders WHERE id = ?`, id)
		if err := row.Scan(&name); err != nil {
			return nil // not found
		}
		found = true
		return nil
	})
	return name, found
}

func insertOrder(ctx context.Context, tx db.DBTX, id, name string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, name, "2025-01-01T00:00:00Z", "2025-01-01T00:00:00Z")
	return err
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertOrder(ctx, tx, "o1", "Coal shuttle")
	})
	require.NoError(t, err)

	name, found := orderExists(uow, "o1")
	assert.True(t, found, "row should exist after commit")
	assert.Equal(t, "Coal shuttle", name)
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertOrder(ctx, tx, "o2", "Doomed"); err != nil {
			return err
		}
		return fmt.Errorf("deliberate failure")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deliberate failure")

	_, found := orderExists(uow, "o2")
	assert.False(t, found, "row should not exist after rollback")
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := openTestUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertOrder(ctx, tx, "o3", "Panicked")
			panic("boom")
		})
	})

	_, found := orderExists(uow, "o3")
	assert.False(t, found, "row should not exist after panic rollback")
}

// Multi-table writes either all land or none do. Mirrors how item
// replacement writes order_items plus their segment rows.
func TestWithinTx_MultiStatementAtomicity(t *testing.T) {
	uow := openTestUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertOrder(ctx, tx, "o4", "Grain block"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, position, title, created_at, updated_at)
			VALUES (?, ?, 1, ?, ?, ?)`,
			"i1", "o4", "Leg 1", "2025-01-01T00:00:00Z", "2025-01-01T00:00:00Z")
		if err != nil {
			return err
		}
		// Violates the FK on order_id, forcing a rollback of everything.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, position, title, created_at, updated_at)
			VALUES (?, ?, 2, ?, ?, ?)`,
			"i2", "missing-order", "Leg 2", "2025-01-01T00:00:00Z", "2025-01-01T00:00:00Z")
		return err
	})
	require.Error(t, err)

	_, found := orderExists(uow, "o4")
	assert.False(t, found, "order should roll back with the failed item write")
}
