package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/database/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	applied, err := database.Migrate(ctx, db, migrations.FS)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		logger.Info("schema is up to date")
		return nil
	}
	for _, name := range applied {
		logger.Info("applied migration", slog.String("file", name))
	}
	return nil
}
