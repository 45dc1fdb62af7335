package internal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukerupert/flipcart/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate opens a database/sql handle on the pgx driver, applies every
// pending migration and closes the handle again. The application itself
// talks to Postgres through a pgxpool.
func Migrate(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return err
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Database migrations applied", "version", version)
	return nil
}

// RunMigrations executes all pending catalog migrations
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.MigrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
