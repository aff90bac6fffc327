//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"ireporter/internal/config"
	"ireporter/internal/database"
	"ireporter/internal/observability"
	"ireporter/internal/storage"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a clean, migrated database for each integration test.
func SharedTestDBSetup(t *testing.T) *sql.DB {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	dbManager := database.NewManager(logger)

	db, err := dbManager.InitDB(databaseURL)
	require.NoError(t, err)

	CleanupTestDatabase(db, t)
	return db
}

// CleanupTestDatabase truncates all application tables.
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	t.Helper()

	ctx := context.Background()
	for _, query := range []string{
		"TRUNCATE TABLE attachments CASCADE",
		"TRUNCATE TABLE reports CASCADE",
		"TRUNCATE TABLE users CASCADE",
	} {
		_, err := db.ExecContext(ctx, query)
		require.NoError(t, err, "cleanup query failed: %s", query)
	}
}

// newIntegrationReportService wires a ReportService over a temp uploads dir.
func newIntegrationReportService(t *testing.T, db *sql.DB) (*ReportService, *AttachmentService, *storage.LocalFileStore) {
	t.Helper()

	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	store, err := storage.NewLocalFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	attachments := NewAttachmentService(store, cfg, logger)
	return NewReportService(db, attachments, nil, logger), attachments, store
}

// createTestUser inserts a user row directly and returns its id.
func createTestUser(t *testing.T, db *sql.DB, username string, isModerator bool) int {
	t.Helper()

	var id int
	err := db.QueryRow(
		`INSERT INTO users (username, is_moderator, created_at, updated_at)
		 VALUES ($1, $2, NOW(), NOW()) RETURNING id`,
		username, isModerator,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
