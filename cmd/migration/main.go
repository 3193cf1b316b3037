package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"

	"github.com/riskibarqy/baseball-stats/internal/platform/database"
	"github.com/riskibarqy/baseball-stats/internal/platform/logging"
)

func main() {
	logger := logging.New(logging.Options{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		Service: "baseball-stats-migration",
		Output:  os.Stderr,
	})
	defer func() { _ = logger.Sync() }()

	if err := newRootCommand(os.Stdout, logger, openMigrator).Execute(); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

// openMigrator builds a migrate instance from DB_URL and the first migration
// directory found on disk.
func openMigrator() (migrator, error) {
	// A missing .env is fine; the variables may come from the environment.
	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	dbURL, err := migrationDBURL(dbURL)
	if err != nil {
		return nil, err
	}

	dir, err := resolveMigrationsDir()
	if err != nil {
		return nil, fmt.Errorf("resolve migrations dir: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), dbURL)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// migrationDBURL applies DB_DISABLE_PREPARED_BINARY_RESULT the same way the
// API does, defaulting to true.
func migrationDBURL(raw string) (string, error) {
	disable := true
	if v := strings.TrimSpace(os.Getenv("DB_DISABLE_PREPARED_BINARY_RESULT")); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return "", fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
		}
		disable = parsed
	}
	if !disable {
		return raw, nil
	}
	return database.DisableBinaryResults(raw), nil
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		os.Getenv("MIGRATIONS_DIR"),
		os.Getenv("MIGRATIONS_PATH"),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("no migration directory (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./db/migrations, /app/db/migrations)")
}
