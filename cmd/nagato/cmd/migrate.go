package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"nagato/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the reply-log schema to DATABASE_URL",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	cfg, logger := loadConfig()
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Error("migration failed", "error", err)
		return err
	}

	version, dirty, err := db.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %v)\n", version, dirty)
	return nil
}
