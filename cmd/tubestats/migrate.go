package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagen/tubestats/internal/store"
)

// migrateCmd applies the SQL migrations for the Postgres source.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long:  "Create or upgrade the channels table in the database named by DATABASE_URL.",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return exitError(ExitInvalidArgs, "migrate: DATABASE_URL is not set")
	}
	log, err := setupLogger(cmd, cfg)
	if err != nil {
		return err
	}

	source := store.MigrationsURL(cfg.MigrationsPath)
	log.Info("running migrations", "source", source, "dsn", store.RedactDSN(cfg.DatabaseURL))
	if err := store.RunMigrations(cfg.DatabaseURL, source); err != nil {
		return exitError(ExitFailure, "migrate: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
	return nil
}
