package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/SscSPs/fundraising_app/migrations"
	migrate "github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// MigratePostgres applies every pending up migration to the PostgreSQL mirror. It uses its
// own database/sql connection through the pgx stdlib driver.
func MigratePostgres(databaseURL string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database connection for migrations: %w", err)
	}
	if err := migrationDB.Ping(); err != nil {
		migrationDB.Close()
		return fmt.Errorf("failed to ping database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		migrationDB.Close()
		return fmt.Errorf("could not create postgres driver instance for migrations: %w", err)
	}
	return runMigrations(migrations.Postgres, "postgres", "postgres", driver, logger)
}

// MigrateSQLite applies every pending up migration to the SQLite mirror at path. The
// migrate driver closes its handle afterwards, so it gets a connection of its own.
func MigrateSQLite(path string, logger *slog.Logger) error {
	migrationDB, err := sql.Open("sqlite3", sqliteDSN(path))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database for migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(migrationDB, &sqlite3.Config{})
	if err != nil {
		migrationDB.Close()
		return fmt.Errorf("could not create sqlite3 driver instance for migrations: %w", err)
	}
	return runMigrations(migrations.SQLite, "sqlite", "sqlite3", driver, logger)
}

func runMigrations(fsys fs.FS, dir string, databaseName string, driver migratedb.Driver, logger *slog.Logger) error {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		driver.Close()
		return fmt.Errorf("could not read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, databaseName, driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	upErr := m.Up()

	sourceErr, dbErr := m.Close()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", upErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("migration source error: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("migration database error: %w", dbErr)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		logger.Info("No new migrations to apply", slog.String("database", databaseName))
	} else {
		logger.Info("Database migrations applied successfully", slog.String("database", databaseName))
	}
	return nil
}
