package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/forgo/menagerie/internal/catalog"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/repository"
)

var (
	importCatalog string
	importFile    string
)

var importCmd = &cobra.Command{
	Use:   "import-species",
	Short: "Import species into a catalog from a YAML file",
	Long: `Insert every species of a YAML file in one transaction. The catalog
comes from --catalog or from the file's "catalog" key; when both are given
they must agree.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importCatalog, "catalog", "", "Target catalog (pokemon, digimon, ...)")
	importCmd.Flags().StringVar(&importFile, "file", "", "YAML file to import")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	var want model.Catalog
	if importCatalog != "" {
		c, err := model.ParseCatalog(importCatalog)
		if err != nil {
			return err
		}
		want = c
	}

	imp, err := catalog.LoadYAML(importFile, want)
	if err != nil {
		return err
	}
	if len(imp.Species) == 0 {
		return errors.New("file holds no species")
	}

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

	repo, err := repository.NewSpeciesRepository(db, imp.Catalog)
	if err != nil {
		return err
	}
	n, err := repo.BulkCreate(ctx, imp.Species)
	if err != nil {
		return err
	}
	logger.Info("imported species",
		slog.String("catalog", string(imp.Catalog)),
		slog.String("file", importFile),
		slog.Int("count", n),
	)
	return nil
}
