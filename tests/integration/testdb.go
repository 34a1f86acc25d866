// Package integration runs the billing backend against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/billing/backend/internal/infrastructure/logger"
	"github.com/billing/backend/internal/infrastructure/migration"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/billing/backend/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	*persistence.Database
	Migrator  *migration.Migrator
	Container testcontainers.Container
	DSN       string
}

// NewTestDB starts a PostgreSQL container, connects to it and applies the
// embedded migrations. The container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("billing_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	log, level := zap.NewNop(), "silent"
	if os.Getenv("TEST_DB_DEBUG") != "" {
		log, level = zap.NewExample(), "info"
	}
	db, err := persistence.Open(gormpostgres.Open(dsn), logger.NewGormLogger(log, level, time.Second))
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	migrator, err := migration.New(sqlDB, migrations.FS, log)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, migrator.Up(), "Failed to run migrations")

	// Closing the migrator would close sqlDB too, so only the database is
	// closed here
	t.Cleanup(func() { _ = db.Close() })

	return &TestDB{
		Database:  db,
		Migrator:  migrator,
		Container: container,
		DSN:       dsn,
	}
}

// CleanTables empties every application table, keeping the schema
func (tdb *TestDB) CleanTables(t *testing.T) {
	t.Helper()

	err := tdb.DB.Exec(`TRUNCATE TABLE invoice_items, invoices, customers, users, company_settings CASCADE`).Error
	require.NoError(t, err, "Failed to truncate tables")
}
