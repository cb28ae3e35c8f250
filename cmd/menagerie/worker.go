package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/forgo/menagerie/internal/jobs"
	"github.com/forgo/menagerie/internal/repository"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background maintenance until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	retention := jobs.NewBattleLogRetentionProcessor(
		repository.NewBattleLogRepository(db),
		cfg.BattleLog.Keep,
		cfg.BattleLog.PruneInterval,
	)
	retention.Start()

	<-ctx.Done()
	logger.Info("shutting down worker")
	retention.Stop()
	return nil
}
