// Package model defines the record types shared across pipeline stages.
package model

// PatentRecord is one row of the patent registry CSV. Only the columns
// the pipeline consumes are decoded; the registry carries many more.
type PatentRecord struct {
	Assignee        string `csv:"assignee"`
	ApplicationYear string `csv:"application_year"`
	Inventors       string `csv:"inventors"`
	InventorName1   string `csv:"inventor_name1,omitempty"`
	InventorName2   string `csv:"inventor_name2,omitempty"`
	InventorName3   string `csv:"inventor_name3,omitempty"`
	InventorName4   string `csv:"inventor_name4,omitempty"`
	InventorName5   string `csv:"inventor_name5,omitempty"`
	InventorName6   string `csv:"inventor_name6,omitempty"`
	InventorName7   string `csv:"inventor_name7,omitempty"`
	InventorName8   string `csv:"inventor_name8,omitempty"`
	InventorName9   string `csv:"inventor_name9,omitempty"`
	InventorName10  string `csv:"inventor_name10,omitempty"`
}

// InventorNames returns the ten positional inventor name columns.
func (p PatentRecord) InventorNames() []string {
	return []string{
		p.InventorName1, p.InventorName2, p.InventorName3, p.InventorName4,
		p.InventorName5, p.InventorName6, p.InventorName7, p.InventorName8,
		p.InventorName9, p.InventorName10,
	}
}

// AssigneeSummary is one patent-holding company after grouping the
// registry by (assignee, clean name): its volume metric and inventor total.
type AssigneeSummary struct {
	Assignee    string
	CleanName   string
	PatentCount int
	InventorSum int
}

// MatchKind distinguishes exact membership hits from approximate ones.
type MatchKind string

const (
	MatchStrict MatchKind = "Strict"
	MatchFuzzy  MatchKind = "Fuzzy"
)

// TierLabel names a volume tier of the ranked assignee list.
type TierLabel string

const (
	Tier1 TierLabel = "Tier 1"
	Tier2 TierLabel = "Tier 2"
	Tier3 TierLabel = "Tier 3"
)

// MatchRecord is one successful match between a patent assignee and an
// acquiror roster entry. Score is 100 with kind Strict exactly when the
// clean forms are byte-identical.
type MatchRecord struct {
	AssigneeOriginal     string
	AssigneeClean        string
	MatchedAcquirorClean string
	MatchType            string
	Kind                 MatchKind
	Score                float64
	Tier                 TierLabel
	OriginalAcquirorName string
}

// ConflictRecord captures a losing write during the dictionary merge.
// Append-only; never consulted by the matching logic.
type ConflictRecord struct {
	Assignee         string
	ExistingAcquiror string
	NewAcquiror      string
	SourceFile       string
}

// SourceStats reports what one source batch contributed to the merge.
type SourceStats struct {
	File        string
	ValidRows   int
	NewMappings int
	Duplicates  int
	Conflicts   int
}

// CompustatRow carries the identifier columns of one Compustat company.
// Identifiers stay strings so leading zeros survive.
type CompustatRow struct {
	Conm  string `csv:"conm"`
	Gvkey string `csv:"gvkey,omitempty"`
	Cusip string `csv:"cusip,omitempty"`
	Cik   string `csv:"cik,omitempty"`
}

// VerifiedMatch is one human-approved row of the Compustat verification
// workbook after review.
type VerifiedMatch struct {
	AcquirorOriginal  string
	CompustatOriginal string
}
