package fileio

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/acuity-research/patentlink/internal/dictionary"
	"github.com/acuity-research/patentlink/internal/model"
)

// Match batch column names. Reviewers edit these workbooks by hand, so
// readers locate columns by header instead of position.
const (
	colAssigneeOriginal = "Assignee_Original"
	colAssigneeClean    = "Assignee_Clean"
	colAcquirorClean    = "Matched_Acquiror_Clean"
	colMatchType        = "Match_Type"
	colSimilarity       = "Similarity"
	colTier             = "Tier"
	colAcquirorOriginal = "Original_Acquiror_Name"
)

var matchBatchHeader = []string{
	colAssigneeOriginal,
	colAssigneeClean,
	colAcquirorClean,
	colMatchType,
	colSimilarity,
	colTier,
	colAcquirorOriginal,
}

// WriteMatchBatch exports match records for review or archival.
func WriteMatchBatch(path string, records []model.MatchRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.AssigneeOriginal,
			r.AssigneeClean,
			r.MatchedAcquirorClean,
			r.MatchType,
			formatScore(r.Score),
			string(r.Tier),
			r.OriginalAcquirorName,
		})
	}
	return WriteSheet(path, "Matches", matchBatchHeader, rows)
}

// ReadMatchBatch reads a match workbook back, including ones a reviewer
// has reordered or extended. Columns beyond the known set are ignored;
// the two columns the dictionary merge needs must be present.
func ReadMatchBatch(path string) ([]model.MatchRecord, error) {
	rows, err := ReadXLSX(path, XLSXOptions{})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("xlsx: %s has no header row", filepath.Base(path))
	}

	idx := headerIndex(rows[0])
	for _, required := range []string{colAssigneeOriginal, colAcquirorOriginal} {
		if _, ok := idx[required]; !ok {
			return nil, eris.Errorf("xlsx: %s missing required column %q", filepath.Base(path), required)
		}
	}

	records := make([]model.MatchRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		score, _ := strconv.ParseFloat(cellAt(row, idx, colSimilarity), 64)
		records = append(records, model.MatchRecord{
			AssigneeOriginal:     cellAt(row, idx, colAssigneeOriginal),
			AssigneeClean:        cellAt(row, idx, colAssigneeClean),
			MatchedAcquirorClean: cellAt(row, idx, colAcquirorClean),
			MatchType:            cellAt(row, idx, colMatchType),
			Score:                score,
			Tier:                 model.TierLabel(cellAt(row, idx, colTier)),
			OriginalAcquirorName: cellAt(row, idx, colAcquirorOriginal),
		})
	}
	return records, nil
}

// WorkbookSource feeds one reviewed or auto-matched workbook into the
// dictionary merge. Read failures surface through Entries so the merge
// can skip the source.
type WorkbookSource struct {
	Path string
}

func (s WorkbookSource) Name() string { return filepath.Base(s.Path) }

func (s WorkbookSource) Entries() ([]dictionary.Entry, error) {
	records, err := ReadMatchBatch(s.Path)
	if err != nil {
		return nil, err
	}
	return dictionary.EntriesFromMatches(records), nil
}

// DictionarySources wraps workbook paths in merge order.
func DictionarySources(paths []string) []dictionary.Source {
	sources := make([]dictionary.Source, 0, len(paths))
	for _, p := range paths {
		sources = append(sources, WorkbookSource{Path: p})
	}
	return sources
}

// WriteMappingView exports the master dictionary for human inspection,
// sorted by mapped acquiror so variants of one company sit together.
func WriteMappingView(path string, mapping map[string]string) error {
	type pair struct{ assignee, acquiror string }
	pairs := make([]pair, 0, len(mapping))
	for assignee, acquiror := range mapping {
		pairs = append(pairs, pair{assignee, acquiror})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].acquiror != pairs[j].acquiror {
			return pairs[i].acquiror < pairs[j].acquiror
		}
		return pairs[i].assignee < pairs[j].assignee
	})

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.assignee, p.acquiror})
	}
	return WriteSheet(path, "Dictionary",
		[]string{"Assignee_Original_Name", "Mapped_Acquiror_Name"}, rows)
}

// ReadMappingView loads a dictionary workbook back into a map. Blank
// rows are skipped.
func ReadMappingView(path string) (map[string]string, error) {
	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	if err != nil {
		return nil, err
	}

	mapping := make(map[string]string, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		assignee := strings.TrimSpace(row[0])
		acquiror := strings.TrimSpace(row[1])
		if assignee == "" || acquiror == "" {
			continue
		}
		mapping[assignee] = acquiror
	}
	return mapping, nil
}

// WriteConflictReport exports losing dictionary writes for review.
func WriteConflictReport(path string, conflicts []model.ConflictRecord) error {
	rows := make([][]string, 0, len(conflicts))
	for _, c := range conflicts {
		rows = append(rows, []string{c.Assignee, c.ExistingAcquiror, c.NewAcquiror, c.SourceFile})
	}
	return WriteSheet(path, "Conflicts",
		[]string{"Assignee", "Existing_Acquiror", "New_Acquiror", "Source_File"}, rows)
}

// WriteSourceStats exports the per-source merge contribution table.
func WriteSourceStats(path string, stats []model.SourceStats) error {
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.File,
			strconv.Itoa(s.ValidRows),
			strconv.Itoa(s.NewMappings),
			strconv.Itoa(s.Duplicates),
			strconv.Itoa(s.Conflicts),
		})
	}
	return WriteSheet(path, "Statistics",
		[]string{"File", "Valid_Rows", "New_Mappings", "Duplicates", "Conflicts"}, rows)
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func cellAt(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
