package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/railorder/internal/db"
)

// NewTestDB opens an in-memory SQLite database with the full schema
// (including seeded timetable years) and closes it when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
