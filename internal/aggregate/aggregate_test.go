package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuity-research/patentlink/internal/model"
)

func patentRow(assignee, year, inventors string, names ...string) model.PatentRecord {
	rec := model.PatentRecord{Assignee: assignee, ApplicationYear: year, Inventors: inventors}
	fields := []*string{
		&rec.InventorName1, &rec.InventorName2, &rec.InventorName3, &rec.InventorName4,
		&rec.InventorName5, &rec.InventorName6, &rec.InventorName7, &rec.InventorName8,
		&rec.InventorName9, &rec.InventorName10,
	}
	for i, name := range names {
		*fields[i] = name
	}
	return rec
}

var testMapping = map[string]string{
	"Acme Corp":        "ACME INC",
	"Acme Corporation": "ACME INC",
	"Beta LLC":         "BETA GROUP",
}

func TestBuilder_PivotCounts(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corp", "1995", "2", "Jane Doe", "John Roe"))
	b.Add(patentRow("Acme Corporation", "1995", "1", "Ann Poe"))
	b.Add(patentRow("Acme Corp", "1996", "3", "Jane Doe", "John Roe", "Ann Poe"))
	b.Add(patentRow("Beta LLC", "1995", "1", "Bo Low"))

	s := b.Summary()
	assert.Equal(t, []int{1995, 1996}, s.Years)
	assert.Equal(t, YearStat{Patents: 2, Inventors: 3}, s.Stats["ACME INC"][1995])
	assert.Equal(t, YearStat{Patents: 1, Inventors: 3}, s.Stats["ACME INC"][1996])
	assert.Equal(t, YearStat{Patents: 1, Inventors: 1}, s.Stats["BETA GROUP"][1995])
}

func TestBuilder_UnmatchedRowsDropped(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corp", "1995", "1"))
	b.Add(patentRow("Unknown Widgets", "1995", "1"))

	s := b.Summary()
	assert.Equal(t, 2, s.TotalRows)
	assert.Equal(t, 1, s.MatchedRows)
	assert.Len(t, s.Stats, 1)
}

func TestBuilder_BlankAssigneeIgnored(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("   ", "1995", "1"))

	s := b.Summary()
	assert.Zero(t, s.TotalRows)
}

func TestBuilder_TrimsAssigneeBeforeLookup(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("  Acme Corp  ", "1995", "1"))

	s := b.Summary()
	assert.Equal(t, 1, s.MatchedRows)
	assert.Equal(t, []string{"Acme Corp"}, s.Aliases["ACME INC"])
}

func TestBuilder_BadYearCountedAndDropped(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corp", "n/a", "1"))
	b.Add(patentRow("Acme Corp", "", "1"))
	b.Add(patentRow("Acme Corp", "1995.0", "1"))

	s := b.Summary()
	assert.Equal(t, 2, s.DroppedYear)
	assert.Equal(t, YearStat{Patents: 1, Inventors: 1}, s.Stats["ACME INC"][1995])
}

func TestBuilder_AliasFirstSeenOrder(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corporation", "1995", "1"))
	b.Add(patentRow("Acme Corp", "1995", "1"))
	b.Add(patentRow("Acme Corporation", "1996", "1"))

	s := b.Summary()
	assert.Equal(t, []string{"Acme Corporation", "Acme Corp"}, s.Aliases["ACME INC"])
	assert.Equal(t, 2, s.MaxAliases())
}

func TestInventorCount_MaxRule(t *testing.T) {
	// Names win when there are more names than the column claims.
	rec := patentRow("Acme Corp", "1995", "1", "Jane Doe", "John Roe", "Ann Poe")
	assert.Equal(t, 3, InventorCount(rec))

	// The column wins when it claims more than the names show.
	rec = patentRow("Acme Corp", "1995", "5", "Jane Doe")
	assert.Equal(t, 5, InventorCount(rec))

	// Non-numeric column falls back to counting names.
	rec = patentRow("Acme Corp", "1995", "unknown", "Jane Doe", "John Roe")
	assert.Equal(t, 2, InventorCount(rec))

	// Nothing at all.
	rec = patentRow("Acme Corp", "1995", "")
	assert.Equal(t, 0, InventorCount(rec))
}

func TestInventorCount_FloatColumn(t *testing.T) {
	rec := patentRow("Acme Corp", "1995", "4.0", "Jane Doe")
	assert.Equal(t, 4, InventorCount(rec))
}

func TestMergeOutcome_AppendsStatAndAliasColumns(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corp", "1995", "2", "Jane Doe", "John Roe"))
	b.Add(patentRow("Acme Corporation", "1996", "1", "Ann Poe"))
	s := b.Summary()

	main := [][]string{
		{"acquiror_name", "deal_value"},
		{"ACME INC", "100"},
		{"GAMMA AG", "50"},
	}

	header, rows, err := MergeOutcome(main, s)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"acquiror_name", "deal_value",
		"patent_1995", "patent_1996",
		"patent_inventor_1995", "patent_inventor_1996",
		"patent_name", "patent_name_1",
	}, header)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ACME INC", "100", "1", "1", "2", "1", "Acme Corp", "Acme Corporation"}, rows[0])
	// Companies without patents are zero-filled, alias cells blank.
	assert.Equal(t, []string{"GAMMA AG", "50", "0", "0", "0", "0", "", ""}, rows[1])
}

func TestMergeOutcome_DropsStalePatentColumns(t *testing.T) {
	b := NewBuilder(testMapping)
	b.Add(patentRow("Acme Corp", "1995", "1"))
	s := b.Summary()

	main := [][]string{
		{"acquiror_name", "patent_1990", "patent_inventor_1990", "patent_name", "deal_value"},
		{"ACME INC", "7", "9", "Old Alias", "100"},
	}

	header, rows, err := MergeOutcome(main, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"acquiror_name", "deal_value", "patent_1995", "patent_inventor_1995", "patent_name"}, header)
	assert.Equal(t, []string{"ACME INC", "100", "1", "1", "Acme Corp"}, rows[0])
}

func TestMergeOutcome_DeduplicatesByAcquiror(t *testing.T) {
	s := NewBuilder(testMapping).Summary()

	main := [][]string{
		{"acquiror_name", "deal_value"},
		{"ACME INC", "100"},
		{"ACME INC", "999"},
	}

	_, rows, err := MergeOutcome(main, s)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100", rows[0][1])
}

func TestMergeOutcome_MissingAcquirorColumn(t *testing.T) {
	s := NewBuilder(testMapping).Summary()

	_, _, err := MergeOutcome([][]string{{"company", "deal_value"}}, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquiror_name")
}

func TestMergeOutcome_EmptyWorkbook(t *testing.T) {
	s := NewBuilder(testMapping).Summary()

	_, _, err := MergeOutcome(nil, s)
	require.Error(t, err)
}

func TestMergeOutcome_ShortRowPadded(t *testing.T) {
	s := NewBuilder(testMapping).Summary()

	main := [][]string{
		{"acquiror_name", "deal_value", "notes"},
		{"ACME INC", "100"},
	}

	_, rows, err := MergeOutcome(main, s)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME INC", "100", ""}, rows[0])
}
