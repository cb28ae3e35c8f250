package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forgo/menagerie/internal/jobs"
	"github.com/forgo/menagerie/internal/repository"
)

var (
	pruneKeep   int
	pruneBattle string
)

var pruneCmd = &cobra.Command{
	Use:   "prune-logs",
	Short: "Trim battle logs to their newest entries",
	Long: `Keep only the newest --keep entries of one battle (--battle) or of
every battle holding more than that.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", -1, "Entries to keep per battle (default: BATTLE_LOG_KEEP)")
	pruneCmd.Flags().StringVar(&pruneBattle, "battle", "", "Only trim this battle")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	keep := pruneKeep
	if keep < 0 {
		keep = cfg.BattleLog.Keep
	}

	ctx := cmd.Context()
	db, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logs := repository.NewBattleLogRepository(db)
	if pruneBattle != "" {
		n, err := logs.ClearOldLogs(ctx, pruneBattle, keep)
		if err != nil {
			return err
		}
		logger.Info("trimmed battle log",
			slog.String("battle_id", pruneBattle),
			slog.Int("keep", keep),
			slog.Int64("deleted", n),
		)
		return nil
	}

	n, err := jobs.NewBattleLogRetentionProcessor(logs, keep, cfg.BattleLog.PruneInterval).RunOnce(ctx)
	logger.Info("trimmed battle logs", slog.Int("keep", keep), slog.Int64("deleted", n))
	if err != nil {
		return fmt.Errorf("some battles were not trimmed: %w", err)
	}
	return nil
}
