// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"ireporter/internal/config"
	"ireporter/internal/database"
	"ireporter/internal/observability"
	contextutils "ireporter/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(dbManager *database.Manager, logger *observability.Logger, db *sql.DB, cfg *config.Config) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the ireporter backend.

Available commands:
  migrate       - Apply pending schema migrations
  stats         - Show database statistics
  prune-uploads - Remove upload files no attachment row references`,
	}

	dbCmd.AddCommand(migrateCmd(dbManager, logger, cfg))
	dbCmd.AddCommand(statsCmd(logger, db))
	dbCmd.AddCommand(pruneUploadsCmd(logger, db, cfg))

	return dbCmd
}

func migrateCmd(dbManager *database.Manager, logger *observability.Logger, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  `Apply all pending schema migrations to the configured database.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()
			logger.Info(ctx, "Running migrations", map[string]interface{}{
				"database_url": maskDatabaseURL(cfg.Database.URL),
			})

			if err := dbManager.RunMigrations(cfg.Database.URL); err != nil {
				return contextutils.WrapError(err, "failed to run migrations")
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

func statsCmd(logger *observability.Logger, db *sql.DB) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show row counts for the main relations and the report status breakdown.`,
		RunE:  runStats(logger, db),
	}
}

func pruneUploadsCmd(logger *observability.Logger, db *sql.DB, cfg *config.Config) *cobra.Command {
	var statsOnly bool

	cmd := &cobra.Command{
		Use:   "prune-uploads",
		Short: "Remove upload files no attachment row references",
		Long: `Remove files from the uploads directory that no attachment row references.

Such files can be left behind when a delete commits but the file removal
afterwards fails. Use --stats to see what would be removed without deleting.`,
		RunE: runPruneUploads(logger, &statsOnly, db, cfg),
	}

	cmd.Flags().BoolVar(&statsOnly, "stats", false, "Only show what would be pruned, don't delete anything")

	return cmd
}

func runStats(logger *observability.Logger, db *sql.DB) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()

		logger.Info(ctx, "Showing database statistics", map[string]interface{}{
			"database": getDatabaseInfo(db),
		})

		counts := map[string]int{}
		for _, table := range []string{"users", "reports", "attachments"} {
			var n int
			if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
				return contextutils.WrapErrorf(err, "failed to count %s", table)
			}
			counts[table] = n
		}

		fmt.Printf("Users:       %d\n", counts["users"])
		fmt.Printf("Reports:     %d\n", counts["reports"])
		fmt.Printf("Attachments: %d\n", counts["attachments"])

		rows, err := db.QueryContext(ctx, "SELECT status, COUNT(*) FROM reports GROUP BY status ORDER BY status")
		if err != nil {
			return contextutils.WrapError(err, "failed to load status breakdown")
		}
		defer func() { _ = rows.Close() }()

		fmt.Println("\nReports by status:")
		for rows.Next() {
			var status string
			var n int
			if err := rows.Scan(&status, &n); err != nil {
				return contextutils.WrapError(err, "failed to scan status row")
			}
			fmt.Printf("  %-20s %d\n", status, n)
		}
		return rows.Err()
	}
}

func runPruneUploads(logger *observability.Logger, statsOnly *bool, db *sql.DB, cfg *config.Config) func(cmd *cobra.Command, args []string) error {
	return func(_ *cobra.Command, _ []string) error {
		ctx := context.Background()
		dir := cfg.Uploads.Dir
		if dir == "" {
			dir = config.DefaultUploadsDir
		}

		referenced := map[string]bool{}
		rows, err := db.QueryContext(ctx, "SELECT stored_name FROM attachments")
		if err != nil {
			return contextutils.WrapError(err, "failed to load attachment names")
		}
		defer func() { _ = rows.Close() }()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return contextutils.WrapError(err, "failed to scan attachment name")
			}
			referenced[name] = true
		}
		if err := rows.Err(); err != nil {
			return contextutils.WrapError(err, "failed to iterate attachment names")
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to read uploads directory %s", dir)
		}

		var orphans []string
		for _, entry := range entries {
			if entry.IsDir() || referenced[entry.Name()] {
				continue
			}
			orphans = append(orphans, entry.Name())
		}

		if len(orphans) == 0 {
			fmt.Println("No orphaned upload files found")
			return nil
		}

		if *statsOnly {
			fmt.Printf("Would remove %d orphaned file(s):\n", len(orphans))
			for _, name := range orphans {
				fmt.Printf("  %s\n", name)
			}
			return nil
		}

		removed := 0
		for _, name := range orphans {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				logger.Warn(ctx, "Failed to remove orphaned file", map[string]interface{}{
					"file":  name,
					"error": err.Error(),
				})
				continue
			}
			removed++
		}

		logger.Info(ctx, "Pruned orphaned upload files", map[string]interface{}{
			"removed": removed,
			"found":   len(orphans),
		})
		fmt.Printf("Removed %d of %d orphaned file(s)\n", removed, len(orphans))
		return nil
	}
}
