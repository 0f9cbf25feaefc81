// Package xref links acquirors in the outcome workbook to Compustat
// companies and applies the human-reviewed links back.
package xref

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/fileio"
	"github.com/acuity-research/patentlink/internal/match"
	"github.com/acuity-research/patentlink/internal/model"
)

// VerifyRow is one candidate link awaiting human review.
type VerifyRow struct {
	AcquirorOriginal  string
	CompustatOriginal string
	MatchType         string
	Score             float64
	AcquirorClean     string
	CompustatClean    string
}

// TargetAcquirors selects the outcome rows worth linking: those that
// picked up at least one patent alias during aggregation.
func TargetAcquirors(rows [][]string) ([]string, error) {
	if len(rows) == 0 {
		return nil, eris.New("xref: outcome workbook is empty")
	}

	acquirorIdx, aliasIdx := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "acquiror_name":
			acquirorIdx = i
		case "patent_name":
			aliasIdx = i
		}
	}
	if acquirorIdx == -1 {
		return nil, eris.New("xref: outcome workbook missing acquiror_name column")
	}
	if aliasIdx == -1 {
		return nil, eris.New("xref: outcome workbook missing patent_name column, run aggregation first")
	}

	var targets []string
	for _, row := range rows[1:] {
		if aliasIdx >= len(row) || strings.TrimSpace(row[aliasIdx]) == "" {
			continue
		}
		if acquirorIdx < len(row) {
			targets = append(targets, row[acquirorIdx])
		}
	}
	return targets, nil
}

// Verify links acquirors against the Compustat roster: an exact pass on
// clean names, then a fuzzy pass at the given threshold for the rest.
// Unmatched acquirors produce no row. The result is sorted fuzzy first,
// score ascending, so the least certain links sit at the top of the
// review workbook. Both sides are cleaned with the same normalizer or
// the exact pass would be meaningless.
func Verify(acquirors []string, conms []string, cleaner match.Cleaner, threshold float64) []VerifyRow {
	roster := match.BuildCandidateSet(conms, cleaner)
	zap.L().Info("compustat roster built",
		zap.Int("companies", len(conms)),
		zap.Int("unique_clean", roster.Len()))

	var out []VerifyRow
	for _, original := range acquirors {
		clean := cleaner.Normalize(original)
		if clean == "" {
			continue
		}

		res := match.Match(clean, roster, match.Policy{Mode: match.Exact})
		matchType := "Strict"
		if res == nil {
			res = match.Match(clean, roster, match.Policy{Mode: match.Approximate, Threshold: threshold})
			matchType = "Fuzzy"
		}
		if res == nil {
			continue
		}

		out = append(out, VerifyRow{
			AcquirorOriginal:  original,
			CompustatOriginal: roster.Display(res.Candidate),
			MatchType:         matchType,
			Score:             res.Score,
			AcquirorClean:     clean,
			CompustatClean:    res.Candidate,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchType != out[j].MatchType {
			return out[i].MatchType < out[j].MatchType // Fuzzy before Strict
		}
		return out[i].Score < out[j].Score
	})
	return out
}

var verificationHeader = []string{
	"Acquiror_Original",
	"Matched_Compustat_Original",
	"Match_Type",
	"Score",
	"Acquiror_Clean",
	"Matched_Compustat_Clean",
}

// WriteVerification exports the review workbook.
func WriteVerification(path string, rows []VerifyRow) error {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{
			r.AcquirorOriginal,
			r.CompustatOriginal,
			r.MatchType,
			strconv.FormatFloat(r.Score, 'f', -1, 64),
			r.AcquirorClean,
			r.CompustatClean,
		})
	}
	return fileio.WriteSheet(path, "Verification", verificationHeader, cells)
}

// ReadVerified loads the workbook back after review, deduplicated by
// acquiror keeping the first row. Reviewers delete bad rows; anything
// left is treated as approved.
func ReadVerified(path string) ([]model.VerifiedMatch, error) {
	rows, err := fileio.ReadXLSX(path, fileio.XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.New("xref: verification workbook is empty")
	}

	acquirorIdx, compustatIdx := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "Acquiror_Original":
			acquirorIdx = i
		case "Matched_Compustat_Original":
			compustatIdx = i
		}
	}
	if acquirorIdx == -1 || compustatIdx == -1 {
		return nil, eris.New("xref: verification workbook missing Acquiror_Original or Matched_Compustat_Original column")
	}

	seen := make(map[string]struct{})
	var verified []model.VerifiedMatch
	for _, row := range rows[1:] {
		if acquirorIdx >= len(row) || compustatIdx >= len(row) {
			continue
		}
		acquiror := row[acquirorIdx]
		if acquiror == "" {
			continue
		}
		if _, dup := seen[acquiror]; dup {
			continue
		}
		seen[acquiror] = struct{}{}
		verified = append(verified, model.VerifiedMatch{
			AcquirorOriginal:  acquiror,
			CompustatOriginal: row[compustatIdx],
		})
	}
	return verified, nil
}
