package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/aggregate"
	"github.com/acuity-research/patentlink/internal/fileio"
	"github.com/acuity-research/patentlink/internal/store"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Apply the master dictionary and pivot patent statistics",
	Long: `Streams the patent registry, maps each assignee through the master
dictionary, and pivots matched rows into per-acquiror, per-year patent
and inventor counts. The statistics and collected assignee aliases are
merged into the outcome workbook, replacing stale patent_* columns.

The dictionary is loaded from the SQLite store written by "dict build",
falling back to the dictionary view workbook when the store is absent.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "aggregate"))

		mapping, err := loadDictionary(ctx)
		if err != nil {
			return err
		}
		if len(mapping) == 0 {
			return eris.New("aggregate: dictionary is empty, run dict build first")
		}
		log.Info("dictionary loaded", zap.Int("mappings", len(mapping)))

		builder := aggregate.NewBuilder(mapping)
		recCh, errCh := fileio.StreamPatentCSV(ctx, cfg.Paths.PatentDB)
		for rec := range recCh {
			builder.Add(rec)
		}
		if err := <-errCh; err != nil {
			return eris.Wrap(err, "aggregate: stream patent registry")
		}
		summary := builder.Summary()

		main, err := fileio.ReadXLSX(cfg.Paths.AcquirorRegistry, fileio.XLSXOptions{})
		if err != nil {
			return eris.Wrap(err, "aggregate: read outcome workbook")
		}

		header, rows, err := aggregate.MergeOutcome(main, summary)
		if err != nil {
			return err
		}

		if err := fileio.WriteSheet(cfg.Paths.OutcomeFile, "Outcome", header, rows); err != nil {
			return eris.Wrap(err, "aggregate: write outcome workbook")
		}

		log.Info("aggregation written",
			zap.String("outcome", cfg.Paths.OutcomeFile),
			zap.Int("companies", len(rows)),
			zap.Int("years", len(summary.Years)))
		return nil
	},
}

// loadDictionary prefers the SQLite store and falls back to the
// dictionary view workbook.
func loadDictionary(ctx context.Context) (map[string]string, error) {
	if _, err := os.Stat(cfg.Paths.DictionaryDB); err == nil {
		db, err := store.NewSQLite(cfg.Paths.DictionaryDB)
		if err != nil {
			return nil, eris.Wrap(err, "aggregate: open dictionary store")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return nil, eris.Wrap(err, "aggregate: migrate dictionary store")
		}
		return db.LookupAll(ctx)
	}

	zap.L().Info("dictionary store absent, reading view workbook",
		zap.String("view", cfg.Paths.DictionaryView))
	mapping, err := fileio.ReadMappingView(cfg.Paths.DictionaryView)
	if err != nil {
		return nil, eris.Wrap(err, "aggregate: read dictionary view")
	}
	return mapping, nil
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
}
