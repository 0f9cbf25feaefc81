package fileio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuity-research/patentlink/internal/model"
)

func sampleBatch() []model.MatchRecord {
	return []model.MatchRecord{
		{
			AssigneeOriginal:     "Acme Corp",
			AssigneeClean:        "ACME",
			MatchedAcquirorClean: "ACME",
			MatchType:            "Strict",
			Score:                100,
			Tier:                 model.Tier2,
			OriginalAcquirorName: "Acme Inc",
		},
		{
			AssigneeOriginal:     "Beta Hldings",
			AssigneeClean:        "BETA HLDINGS",
			MatchedAcquirorClean: "BETA HOLDINGS",
			MatchType:            "Fuzzy (≥90)",
			Score:                92.5,
			Tier:                 model.Tier1,
			OriginalAcquirorName: "Beta Holdings Ltd",
		},
	}
}

func TestMatchBatch_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.xlsx")
	batch := sampleBatch()

	require.NoError(t, WriteMatchBatch(path, batch))

	got, err := ReadMatchBatch(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, batch[0].AssigneeOriginal, got[0].AssigneeOriginal)
	assert.Equal(t, batch[0].OriginalAcquirorName, got[0].OriginalAcquirorName)
	assert.Equal(t, model.Tier2, got[0].Tier)
	assert.Equal(t, 100.0, got[0].Score)
	assert.Equal(t, 92.5, got[1].Score)
	assert.Equal(t, "Fuzzy (≥90)", got[1].MatchType)
}

func TestReadMatchBatch_ReorderedColumns(t *testing.T) {
	// Reviewers reorder and extend columns; the reader keys on headers.
	path := createTestXLSX(t, map[string][][]string{
		"Matches": {
			{"Notes", "Original_Acquiror_Name", "Assignee_Original", "Similarity"},
			{"keep", "Acme Inc", "Acme Corp", "95.5"},
		},
	})

	got, err := ReadMatchBatch(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme Corp", got[0].AssigneeOriginal)
	assert.Equal(t, "Acme Inc", got[0].OriginalAcquirorName)
	assert.Equal(t, 95.5, got[0].Score)
}

func TestReadMatchBatch_MissingRequiredColumn(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Matches": {
			{"Assignee_Original", "Similarity"},
			{"Acme Corp", "100"},
		},
	})

	_, err := ReadMatchBatch(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Original_Acquiror_Name")
}

func TestWorkbookSource_Entries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auto.xlsx")
	require.NoError(t, WriteMatchBatch(path, sampleBatch()))

	src := WorkbookSource{Path: path}
	assert.Equal(t, "auto.xlsx", src.Name())

	entries, err := src.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Acme Corp", entries[0].Assignee)
	assert.Equal(t, "Acme Inc", entries[0].Acquiror)
}

func TestWorkbookSource_MissingFile(t *testing.T) {
	src := WorkbookSource{Path: filepath.Join(t.TempDir(), "absent.xlsx")}
	_, err := src.Entries()
	require.Error(t, err)
}

func TestDictionarySources_PreservesOrder(t *testing.T) {
	sources := DictionarySources([]string{"manual.xlsx", "auto.xlsx"})
	require.Len(t, sources, 2)
	assert.Equal(t, "manual.xlsx", sources[0].Name())
	assert.Equal(t, "auto.xlsx", sources[1].Name())
}

func TestMappingView_SortedByAcquiror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.xlsx")
	mapping := map[string]string{
		"Zeta Corp":        "ZETA",
		"Acme Corporation": "ACME INC",
		"Acme Corp":        "ACME INC",
	}

	require.NoError(t, WriteMappingView(path, mapping))

	rows, err := ReadXLSX(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Assignee_Original_Name", "Mapped_Acquiror_Name"}, rows[0])
	assert.Equal(t, []string{"Acme Corp", "ACME INC"}, rows[1])
	assert.Equal(t, []string{"Acme Corporation", "ACME INC"}, rows[2])
	assert.Equal(t, []string{"Zeta Corp", "ZETA"}, rows[3])
}

func TestMappingView_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view.xlsx")
	mapping := map[string]string{"Acme Corp": "ACME INC", "Beta LLC": "BETA"}

	require.NoError(t, WriteMappingView(path, mapping))

	got, err := ReadMappingView(path)
	require.NoError(t, err)
	assert.Equal(t, mapping, got)
}

func TestWriteConflictReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conflicts.xlsx")
	conflicts := []model.ConflictRecord{{
		Assignee:         "Acme Corp",
		ExistingAcquiror: "ACME INC",
		NewAcquiror:      "ACME HOLDINGS",
		SourceFile:       "auto.xlsx",
	}}

	require.NoError(t, WriteConflictReport(path, conflicts))

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Acme Corp", "ACME INC", "ACME HOLDINGS", "auto.xlsx"}, rows[0])
}

func TestWriteSourceStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.xlsx")
	stats := []model.SourceStats{
		{File: "manual.xlsx", ValidRows: 10, NewMappings: 8, Duplicates: 2},
		{File: "auto.xlsx", ValidRows: 5, NewMappings: 3, Duplicates: 1, Conflicts: 1},
	}

	require.NoError(t, WriteSourceStats(path, stats))

	rows, err := ReadXLSX(path, XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"manual.xlsx", "10", "8", "2", "0"}, rows[0])
	assert.Equal(t, []string{"auto.xlsx", "5", "3", "1", "1"}, rows[1])
}
