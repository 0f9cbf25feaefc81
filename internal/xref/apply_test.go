package xref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acuity-research/patentlink/internal/model"
)

func testIDIndex() map[string]model.CompustatRow {
	return BuildIDIndex([]model.CompustatRow{
		{Conm: "ACME INC", Gvkey: "001234", Cusip: "00123J104", Cik: "0000320193"},
		{Conm: "BETA HOLDINGS", Gvkey: "005678", Cusip: "05987X309", Cik: "0000789019"},
	})
}

func TestBuildIDIndex_KeepsFirstAndDropsBlank(t *testing.T) {
	index := BuildIDIndex([]model.CompustatRow{
		{Conm: "ACME INC", Gvkey: "001234"},
		{Conm: "ACME INC", Gvkey: "999999"},
		{Conm: "  ", Gvkey: "111111"},
	})

	require.Len(t, index, 1)
	assert.Equal(t, "001234", index["ACME INC"].Gvkey)
}

func TestApply_FillsOnlyBlankCells(t *testing.T) {
	main := [][]string{
		{"acquiror_name", "gvkey", "cusip", "cik", "compustat_name"},
		{"ACME INC", "", "EXISTING", "", ""},
	}
	verified := []model.VerifiedMatch{{AcquirorOriginal: "ACME INC", CompustatOriginal: "ACME INC"}}

	header, rows, err := Apply(main, verified, testIDIndex())
	require.NoError(t, err)
	assert.Equal(t, main[0], header)
	require.Len(t, rows, 1)

	assert.Equal(t, "001234", rows[0][1])
	// A reviewer-entered value is never overwritten.
	assert.Equal(t, "EXISTING", rows[0][2])
	assert.Equal(t, "0000320193", rows[0][3])
	assert.Equal(t, "ACME INC", rows[0][4])
}

func TestApply_AppendsMissingIDColumns(t *testing.T) {
	main := [][]string{
		{"acquiror_name", "deal_value"},
		{"BETA HOLDINGS", "75"},
		{"GAMMA AG", "50"},
	}
	verified := []model.VerifiedMatch{{AcquirorOriginal: "BETA HOLDINGS", CompustatOriginal: "BETA HOLDINGS"}}

	header, rows, err := Apply(main, verified, testIDIndex())
	require.NoError(t, err)
	assert.Equal(t, []string{"acquiror_name", "deal_value", "gvkey", "cusip", "cik", "compustat_name"}, header)

	assert.Equal(t, []string{"BETA HOLDINGS", "75", "005678", "05987X309", "0000789019", "BETA HOLDINGS"}, rows[0])
	// Rows without a reviewed link pass through with blank identifiers.
	assert.Equal(t, []string{"GAMMA AG", "50", "", "", "", ""}, rows[1])
}

func TestApply_PreservesLeadingZeros(t *testing.T) {
	main := [][]string{
		{"acquiror_name", "gvkey", "cusip", "cik", "compustat_name"},
		{"ACME INC", "", "", "", ""},
	}
	verified := []model.VerifiedMatch{{AcquirorOriginal: "ACME INC", CompustatOriginal: "ACME INC"}}

	_, rows, err := Apply(main, verified, testIDIndex())
	require.NoError(t, err)
	assert.Equal(t, "001234", rows[0][1])
	assert.Equal(t, "0000320193", rows[0][3])
}

func TestApply_LinkWithoutCompustatIDs(t *testing.T) {
	// A reviewed link whose company is absent from the roster still
	// records the compustat name; identifier cells stay blank.
	main := [][]string{
		{"acquiror_name", "gvkey", "cusip", "cik", "compustat_name"},
		{"ACME INC", "", "", "", ""},
	}
	verified := []model.VerifiedMatch{{AcquirorOriginal: "ACME INC", CompustatOriginal: "UNKNOWN CO"}}

	_, rows, err := Apply(main, verified, testIDIndex())
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME INC", "", "", "", "UNKNOWN CO"}, rows[0])
}

func TestApply_MissingAcquirorColumn(t *testing.T) {
	_, _, err := Apply([][]string{{"company"}}, nil, testIDIndex())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acquiror_name")
}

func TestApply_EmptyWorkbook(t *testing.T) {
	_, _, err := Apply(nil, nil, testIDIndex())
	require.Error(t, err)
}
