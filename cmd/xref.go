package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/fileio"
	"github.com/acuity-research/patentlink/internal/xref"
)

var xrefCmd = &cobra.Command{
	Use:   "xref",
	Short: "Cross-reference acquirors with Compustat",
}

var xrefVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Generate the Compustat verification workbook",
	Long: `Links every acquiror that picked up patent data to the Compustat
company roster: exact match on clean names first, then fuzzy match for
the rest. The workbook is sorted with fuzzy links first, lowest score
on top, so a reviewer starts with the least certain rows. Delete the
wrong rows, save the file, then run "xref apply".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "xref.verify"))

		cleaner, err := newCleaner()
		if err != nil {
			return err
		}

		outcome, err := fileio.ReadXLSX(cfg.Paths.OutcomeFile, fileio.XLSXOptions{})
		if err != nil {
			return eris.Wrap(err, "xref verify: read outcome workbook")
		}
		targets, err := xref.TargetAcquirors(outcome)
		if err != nil {
			return err
		}
		log.Info("acquirors with patent data", zap.Int("count", len(targets)))

		compustat, err := fileio.ReadCompustatCSV(cfg.Paths.CompustatDB)
		if err != nil {
			return eris.Wrap(err, "xref verify: read compustat")
		}
		conms := make([]string, 0, len(compustat))
		for _, row := range compustat {
			conms = append(conms, row.Conm)
		}

		rows := xref.Verify(targets, conms, cleaner, cfg.Xref.FuzzyThreshold)
		if len(rows) == 0 {
			return eris.New("xref verify: no matches found")
		}

		if err := xref.WriteVerification(cfg.Paths.VerificationFile, rows); err != nil {
			return eris.Wrap(err, "xref verify: write workbook")
		}

		strict, fuzzy := 0, 0
		for _, r := range rows {
			if r.MatchType == "Strict" {
				strict++
			} else {
				fuzzy++
			}
		}
		log.Info("verification workbook written",
			zap.String("file", cfg.Paths.VerificationFile),
			zap.Int("strict", strict),
			zap.Int("fuzzy", fuzzy))
		return nil
	},
}

var xrefApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Fill Compustat identifiers from the reviewed workbook",
	Long: `Reads the reviewed verification workbook and fills gvkey, cusip, cik,
and compustat_name into the outcome workbook. Only blank cells are
filled; values a reviewer entered by hand are never overwritten.
Identifiers are carried as text so leading zeros survive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "xref.apply"))

		verified, err := xref.ReadVerified(cfg.Paths.VerificationFile)
		if err != nil {
			return eris.Wrap(err, "xref apply: read verified workbook")
		}
		log.Info("reviewed links loaded", zap.Int("count", len(verified)))

		compustat, err := fileio.ReadCompustatCSV(cfg.Paths.CompustatDB)
		if err != nil {
			return eris.Wrap(err, "xref apply: read compustat")
		}
		ids := xref.BuildIDIndex(compustat)

		outcome, err := fileio.ReadXLSX(cfg.Paths.OutcomeFile, fileio.XLSXOptions{})
		if err != nil {
			return eris.Wrap(err, "xref apply: read outcome workbook")
		}

		header, rows, err := xref.Apply(outcome, verified, ids)
		if err != nil {
			return err
		}

		if err := fileio.WriteSheet(cfg.Paths.AcquirorRegistry, "Outcome", header, rows); err != nil {
			return eris.Wrap(err, "xref apply: write outcome workbook")
		}

		log.Info("identifiers merged",
			zap.String("file", cfg.Paths.AcquirorRegistry),
			zap.Int("rows", len(rows)))
		return nil
	},
}

func init() {
	xrefCmd.AddCommand(xrefVerifyCmd)
	xrefCmd.AddCommand(xrefApplyCmd)
	rootCmd.AddCommand(xrefCmd)
}
