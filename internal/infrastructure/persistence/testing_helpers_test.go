package persistence

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

// newSQLiteDatabase opens a migrated in-memory SQLite database. A single
// connection keeps every query on the same in-memory database.
func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := Open(sqlite.Open(":memory:"), nil)
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}
