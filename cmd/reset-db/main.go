// Package main provides a small CLI utility to reset the application's
// database to a clean state. It is intended for local development and
// testing only and will permanently delete all data when run.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ireporter/internal/config"
	"ireporter/internal/database"
	"ireporter/internal/observability"
	"ireporter/internal/services"
)

// fatalIfErr logs the error with context and exits
func fatalIfErr(ctx context.Context, logger *observability.Logger, msg string, err error, fields map[string]interface{}) {
	logger.Error(ctx, msg, err, fields)
	os.Exit(1)
}

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	tp, mp, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "reset-db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if tp != nil {
			if err := tp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down tracer provider", map[string]interface{}{"error": err.Error()})
			}
		}
		if mp != nil {
			if err := mp.Shutdown(context.TODO()); err != nil {
				logger.Warn(ctx, "Error shutting down meter provider", map[string]interface{}{"error": err.Error()})
			}
		}
	}()

	fmt.Println("DATABASE RESET UTILITY")
	fmt.Println("======================")
	fmt.Println("This will PERMANENTLY DELETE ALL DATA in the database!")
	fmt.Println("This includes:")
	fmt.Println("- All users (including the admin account)")
	fmt.Println("- All reports")
	fmt.Println("- All attachment records and stored files")
	fmt.Println("")

	if cfg.Database.URL == "" {
		fatalIfErr(ctx, logger, "Database URL is empty", nil, nil)
	}

	fmt.Printf("Database: %s\n\n", maskDatabaseURL(cfg.Database.URL))

	if !confirmReset() {
		fmt.Println("Reset cancelled.")
		return
	}

	dbManager := database.NewManager(logger)
	db, err := dbManager.InitDBWithConfig(cfg.Database)
	if err != nil {
		fatalIfErr(ctx, logger, "Failed to connect to database", err, map[string]interface{}{"db_url": maskDatabaseURL(cfg.Database.URL)})
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	fmt.Println("Truncating tables...")
	logger.Info(ctx, "Truncating tables", map[string]interface{}{"service": "reset-db"})
	if _, err := db.ExecContext(ctx, "TRUNCATE attachments, reports, users RESTART IDENTITY CASCADE"); err != nil {
		fatalIfErr(ctx, logger, "Failed to truncate tables", err, nil)
	}

	fmt.Println("Removing stored attachment files...")
	if err := clearUploadsDir(cfg.Uploads.Dir); err != nil {
		logger.Warn(ctx, "Failed to clear uploads directory", map[string]interface{}{
			"dir":   cfg.Uploads.Dir,
			"error": err.Error(),
		})
	}

	if cfg.Server.AdminUsername != "" && cfg.Server.AdminPassword != "" {
		fmt.Printf("Recreating admin user %q...\n", cfg.Server.AdminUsername)
		userService := services.NewUserService(db, logger)
		if _, err := userService.CreateUser(ctx, cfg.Server.AdminUsername, "", cfg.Server.AdminPassword, true); err != nil {
			fatalIfErr(ctx, logger, "Failed to recreate admin user", err, map[string]interface{}{"admin_username": cfg.Server.AdminUsername})
		}
		fmt.Printf("\nAdmin user credentials:\n")
		fmt.Printf("   Username: %s\n", cfg.Server.AdminUsername)
		fmt.Printf("   Password: %s\n", cfg.Server.AdminPassword)
		fmt.Println("")
	}

	fmt.Println("Database is now ready to use")
	logger.Info(ctx, "Database reset completed", map[string]interface{}{"service": "reset-db"})
}

// clearUploadsDir removes every file directly under dir, leaving dir itself.
func clearUploadsDir(dir string) error {
	if dir == "" {
		dir = config.DefaultUploadsDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func confirmReset() bool {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("Are you sure you want to reset the database? (type 'yes' to confirm): ")
		response, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("Error reading input:", err)
			continue
		}

		response = strings.TrimSpace(strings.ToLower(response))

		switch response {
		case "yes":
			return true
		case "no", "":
			return false
		default:
			fmt.Println("Please type 'yes' to confirm or 'no' to cancel.")
		}
	}
}

func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			return "postgres://***:***@" + parts[1]
		}
	}
	return url
}
