package database

import (
	"context"
	"date-booker/core/logger"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// Migrate applies all pending embedded migrations.
func (d *Database) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, d.sqlx.DB, migrationsDir); err != nil {
		logger.Error("Database:Migrate:Error", "error", err)
		return fmt.Errorf("goose up: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, d.sqlx.DB)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}

	logger.Info("Database migrations applied", "version", version)
	return nil
}
