// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/account-service/internal/config"
	"codeberg.org/oliverandrich/account-service/internal/database"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// MigrateUp applies all pending migrations.
func MigrateUp(_ context.Context, cmd *cli.Command) error {
	return withSchema(cmd, "migrate up", database.RunMigrations)
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(_ context.Context, cmd *cli.Command) error {
	return withSchema(cmd, "migrate down", database.MigrateDown)
}

// MigrateReset rolls back every migration.
func MigrateReset(_ context.Context, cmd *cli.Command) error {
	return withSchema(cmd, "migrate reset", database.MigrateReset)
}

// MigrateStatus prints the current schema version.
func MigrateStatus(_ context.Context, cmd *cli.Command) error {
	return withSchema(cmd, "migrate status", func(db *sqlx.DB) error {
		version, err := database.MigrationVersion(db)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.Root().Writer, "schema version %d\n", version)
		return err
	})
}

func withSchema(cmd *cli.Command, op string, fn func(db *sqlx.DB) error) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	if err := fn(db); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	slog.Info(op+" done", "dialect", database.DialectFor(cfg.Database.DSN))
	return nil
}
