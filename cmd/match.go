package main

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/fileio"
	"github.com/acuity-research/patentlink/internal/match"
	"github.com/acuity-research/patentlink/internal/model"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match patent assignees against the acquiror roster",
	Long: `Groups the patent registry by assignee spelling, partitions the ranked
list into volume tiers, and matches each tier against the acquiror
roster with tier-specific review routing:

Tier 1 (top 5% by volume): exact and fuzzy hits all go to manual review.
Tier 2 (>5 patents):       exact hits auto-accept, fuzzy at 100 to review.
Tier 3 (rest):             exact hits only, auto-accepted.

Writes the auto-accepted and needs-review workbooks consumed by "dict build".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("command", "match"))

		cleaner, err := newCleaner()
		if err != nil {
			return err
		}

		rosterRows, err := fileio.ReadXLSX(cfg.Paths.AcquirorRegistry, fileio.XLSXOptions{})
		if err != nil {
			return eris.Wrap(err, "match: read acquiror roster")
		}
		acquirors, err := columnValues(rosterRows, "acquiror_name")
		if err != nil {
			return err
		}
		candidates := match.BuildCandidateSet(acquirors, cleaner)
		log.Info("acquiror roster loaded",
			zap.Int("rows", len(acquirors)),
			zap.Int("unique_clean", candidates.Len()))

		records, err := fileio.ReadPatentCSV(cfg.Paths.PatentDB)
		if err != nil {
			return eris.Wrap(err, "match: read patent registry")
		}
		summaries := match.Summarize(records, cleaner)
		log.Info("patent registry summarized",
			zap.Int("rows", len(records)),
			zap.Int("assignees", len(summaries)))

		tiers := match.Partition(summaries, match.TierOptions{
			Tier1Fraction:   cfg.Match.Tier1Fraction,
			Tier2MinPatents: cfg.Match.Tier2MinPatents,
		})

		orch := match.NewOrchestrator(candidates, cfg.Match.MaxWorkers, cfg.Match.ParallelThreshold)

		var auto, review []model.MatchRecord
		passes := []struct {
			tier   model.TierLabel
			rows   []model.AssigneeSummary
			policy match.TierPolicy
		}{
			{model.Tier1, tiers.Tier1, match.TierPolicy{FuzzyThreshold: cfg.Match.Tier1Threshold, ReviewExact: true}},
			{model.Tier2, tiers.Tier2, match.TierPolicy{FuzzyThreshold: cfg.Match.Tier2Threshold}},
			{model.Tier3, tiers.Tier3, match.TierPolicy{}},
		}
		for _, p := range passes {
			a, r, err := orch.Run(ctx, p.tier, p.rows, p.policy)
			if err != nil {
				return eris.Wrapf(err, "match: %s pass", strings.ToLower(string(p.tier)))
			}
			auto = append(auto, a...)
			review = append(review, r...)
		}

		issues, stats := match.Audit(append(append([]model.MatchRecord(nil), auto...), review...))
		for _, issue := range issues {
			log.Warn(issue)
		}
		log.Info("match batch audited",
			zap.Int("auto", len(auto)),
			zap.Int("review", len(review)),
			zap.Any("match_types", stats.MatchTypes))

		// Least certain rows first so reviewers start where it matters.
		sort.SliceStable(review, func(i, j int) bool {
			if review[i].MatchType != review[j].MatchType {
				return review[i].MatchType < review[j].MatchType
			}
			return review[i].Score < review[j].Score
		})

		if err := fileio.WriteMatchBatch(cfg.Paths.ReviewFile, review); err != nil {
			return eris.Wrap(err, "match: write review workbook")
		}
		if err := fileio.WriteMatchBatch(cfg.Paths.AutoFile, auto); err != nil {
			return eris.Wrap(err, "match: write auto workbook")
		}

		log.Info("match complete",
			zap.String("review_file", cfg.Paths.ReviewFile),
			zap.String("auto_file", cfg.Paths.AutoFile))
		return nil
	},
}

// columnValues extracts one named column from workbook rows.
func columnValues(rows [][]string, column string) ([]string, error) {
	if len(rows) == 0 {
		return nil, eris.New("match: workbook is empty")
	}
	idx := -1
	for i, name := range rows[0] {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, eris.Errorf("match: workbook missing %q column", column)
	}

	var values []string
	for _, row := range rows[1:] {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			values = append(values, row[idx])
		}
	}
	return values, nil
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
