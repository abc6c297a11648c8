package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"expensetrack/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationRunner applies the expense schema and optional seed data on top
// of a raw SQL connection. Paths and retry policy come from configuration.
type MigrationRunner struct {
	db     *sql.DB
	cfg    config.MigrationConfig
	logger *slog.Logger
}

// NewMigrationRunner creates a runner bound to the given connection and
// migration settings. A nil logger falls back to slog.Default.
func NewMigrationRunner(db *sql.DB, cfg config.MigrationConfig, logger *slog.Logger) *MigrationRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &MigrationRunner{db: db, cfg: cfg, logger: logger}
}

// WaitForStore pings the expense store until it answers or the configured
// attempt budget runs out.
func (mr *MigrationRunner) WaitForStore() error {
	attempts := mr.cfg.ReadyAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 1; i <= attempts; i++ {
		if err := mr.db.Ping(); err == nil {
			mr.logger.Info("expense store is ready", "attempt", i)
			return nil
		} else {
			mr.logger.Warn("expense store not ready",
				"attempt", i,
				"max_attempts", attempts,
				"error", err,
			)
		}

		if i < attempts {
			time.Sleep(mr.cfg.ReadyInterval)
		}
	}

	return fmt.Errorf("expense store not ready after %d attempts", attempts)
}

// ApplyMigrations brings the expense schema up to the latest version. A
// missing migrations directory is treated as "nothing to apply".
func (mr *MigrationRunner) ApplyMigrations() error {
	if _, err := os.Stat(mr.cfg.Path); os.IsNotExist(err) {
		mr.logger.Info("no migrations directory, skipping", "path", mr.cfg.Path)
		return nil
	}

	m, err := mr.newMigrate()
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	if dirty {
		mr.logger.Warn("expense schema is dirty, forcing version", "version", version)
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("failed to force version %d: %w", version, err)
		}
	}

	err = m.Up()
	if err == migrate.ErrNoChange {
		mr.logger.Info("expense schema already up to date", "version", version)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version after apply: %w", err)
	}
	mr.logger.Info("expense schema migrated", "from", version, "to", newVersion)
	return nil
}

// LoadSeeds executes every SQL file in the seeds directory. Individual seed
// failures are logged and skipped so one bad file cannot block startup.
func (mr *MigrationRunner) LoadSeeds() error {
	if !mr.cfg.LoadSeeds {
		mr.logger.Info("seed loading disabled")
		return nil
	}

	if _, err := os.Stat(mr.cfg.SeedsPath); os.IsNotExist(err) {
		mr.logger.Info("no seeds directory, skipping", "path", mr.cfg.SeedsPath)
		return nil
	}

	files, err := filepath.Glob(filepath.Join(mr.cfg.SeedsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list seed files: %w", err)
	}
	if len(files) == 0 {
		mr.logger.Info("no seed files found", "path", mr.cfg.SeedsPath)
		return nil
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read seed file %s: %w", file, err)
		}

		if _, err := mr.db.Exec(string(content)); err != nil {
			mr.logger.Warn("seed file failed", "file", filepath.Base(file), "error", err)
			continue
		}
		mr.logger.Info("seed file applied", "file", filepath.Base(file))
	}

	return nil
}

// Status returns the current schema version and dirty flag.
func (mr *MigrationRunner) Status() (version uint, dirty bool, err error) {
	if _, err := os.Stat(mr.cfg.Path); os.IsNotExist(err) {
		return 0, false, fmt.Errorf("migrations directory not found at %s", mr.cfg.Path)
	}

	m, err := mr.newMigrate()
	if err != nil {
		return 0, false, err
	}
	return m.Version()
}

func (mr *MigrationRunner) newMigrate() (*migrate.Migrate, error) {
	absPath, err := filepath.Abs(mr.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations path: %w", err)
	}

	driver, err := postgres.WithInstance(mr.db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", absPath),
		"postgres",
		driver,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

// RunMigrationsIfEnabled waits for the store, applies the expense schema,
// and loads seeds when auto-migration is configured. Seed and status
// problems are logged rather than surfaced.
func RunMigrationsIfEnabled(db *sql.DB, cfg config.MigrationConfig, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.AutoMigrate {
		logger.Info("auto-migration disabled")
		return nil
	}

	runner := NewMigrationRunner(db, cfg, logger)

	if err := runner.WaitForStore(); err != nil {
		return fmt.Errorf("store readiness check failed: %w", err)
	}
	if err := runner.ApplyMigrations(); err != nil {
		return fmt.Errorf("migration run failed: %w", err)
	}
	if err := runner.LoadSeeds(); err != nil {
		logger.Warn("seed loading failed", "error", err)
	}

	if version, dirty, err := runner.Status(); err != nil {
		logger.Warn("failed to read migration status", "error", err)
	} else {
		logger.Info("migration status", "version", version, "dirty", dirty)
	}

	return nil
}
