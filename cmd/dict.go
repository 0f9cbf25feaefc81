package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/dictionary"
	"github.com/acuity-research/patentlink/internal/fileio"
	"github.com/acuity-research/patentlink/internal/store"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Master dictionary operations",
}

var dictBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Merge reviewed match batches into the master dictionary",
	Long: `Folds the configured source workbooks into a single assignee-to-acquiror
dictionary. Sources are processed in configuration order and the first
mapping for an assignee wins; later disagreements are logged as
conflicts and ignored. Writes the SQLite dictionary, the review
workbook, the conflict report, and the per-source statistics sheet.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "dict.build"))

		result, err := dictionary.Build(fileio.DictionarySources(cfg.Dict.Sources))
		if err != nil {
			return eris.Wrap(err, "dict build")
		}

		db, err := store.NewSQLite(cfg.Paths.DictionaryDB)
		if err != nil {
			return eris.Wrap(err, "dict build: open store")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return eris.Wrap(err, "dict build: migrate")
		}
		if err := db.SaveMapping(ctx, result.Mapping); err != nil {
			return eris.Wrap(err, "dict build: save mapping")
		}
		if err := db.SaveConflicts(ctx, result.Conflicts); err != nil {
			return eris.Wrap(err, "dict build: save conflicts")
		}
		if err := db.SaveSourceStats(ctx, result.Stats); err != nil {
			return eris.Wrap(err, "dict build: save stats")
		}

		if err := fileio.WriteMappingView(cfg.Paths.DictionaryView, result.Mapping); err != nil {
			return eris.Wrap(err, "dict build: write dictionary view")
		}
		if err := fileio.WriteSourceStats(cfg.Paths.StatsReport, result.Stats); err != nil {
			return eris.Wrap(err, "dict build: write stats report")
		}
		if len(result.Conflicts) > 0 {
			if err := fileio.WriteConflictReport(cfg.Paths.ConflictReport, result.Conflicts); err != nil {
				return eris.Wrap(err, "dict build: write conflict report")
			}
			log.Warn("conflicts detected, first mapping kept",
				zap.Int("conflicts", len(result.Conflicts)),
				zap.String("report", cfg.Paths.ConflictReport))
		}

		for _, top := range result.TopVariants(10) {
			log.Info("most aliased acquiror",
				zap.String("acquiror", top.Acquiror),
				zap.Int("variants", top.Variants))
		}

		log.Info("dictionary built",
			zap.Int("mappings", len(result.Mapping)),
			zap.Int("sources", len(result.Stats)),
			zap.String("db", cfg.Paths.DictionaryDB),
			zap.String("view", cfg.Paths.DictionaryView))
		return nil
	},
}

func init() {
	dictCmd.AddCommand(dictBuildCmd)
	rootCmd.AddCommand(dictCmd)
}
