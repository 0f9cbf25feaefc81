// Package aggregate turns dictionary-matched patent rows into per-company,
// per-year statistics and folds them into the outcome workbook.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/model"
)

// YearStat is one (acquiror, application year) cell of the pivot.
type YearStat struct {
	Patents   int
	Inventors int
}

// Summary is the aggregation output: a pivot of patent and inventor
// counts keyed by acquiror and year, plus the assignee spellings that
// contributed to each acquiror.
type Summary struct {
	Stats   map[string]map[int]YearStat
	Years   []int               // ascending
	Aliases map[string][]string // first-seen order per acquiror

	TotalRows   int
	MatchedRows int
	DroppedYear int
}

// MaxAliases returns the widest alias list across all acquirors.
func (s *Summary) MaxAliases() int {
	max := 0
	for _, names := range s.Aliases {
		if len(names) > max {
			max = len(names)
		}
	}
	return max
}

// Builder accumulates registry rows against a master dictionary.
type Builder struct {
	mapping   map[string]string
	stats     map[string]map[int]YearStat
	aliases   map[string][]string
	aliasSeen map[string]map[string]struct{}
	years     map[int]struct{}

	total       int
	matched     int
	droppedYear int
}

// NewBuilder starts an aggregation over the given dictionary. Keys are
// matched against the trimmed raw assignee, not its clean form: the
// dictionary already encodes the review decisions spelling by spelling.
func NewBuilder(mapping map[string]string) *Builder {
	return &Builder{
		mapping:   mapping,
		stats:     make(map[string]map[int]YearStat),
		aliases:   make(map[string][]string),
		aliasSeen: make(map[string]map[string]struct{}),
		years:     make(map[int]struct{}),
	}
}

// Add folds one registry row into the aggregation. Rows with a blank
// assignee, no dictionary hit, or an uncoercible application year are
// counted and skipped.
func (b *Builder) Add(rec model.PatentRecord) {
	assignee := strings.TrimSpace(rec.Assignee)
	if assignee == "" {
		return
	}
	b.total++

	acquiror, ok := b.mapping[assignee]
	if !ok {
		return
	}
	b.matched++

	year, ok := coerceYear(rec.ApplicationYear)
	if !ok {
		b.droppedYear++
		return
	}

	if b.stats[acquiror] == nil {
		b.stats[acquiror] = make(map[int]YearStat)
	}
	cell := b.stats[acquiror][year]
	cell.Patents++
	cell.Inventors += InventorCount(rec)
	b.stats[acquiror][year] = cell
	b.years[year] = struct{}{}

	if b.aliasSeen[acquiror] == nil {
		b.aliasSeen[acquiror] = make(map[string]struct{})
	}
	if _, seen := b.aliasSeen[acquiror][assignee]; !seen {
		b.aliasSeen[acquiror][assignee] = struct{}{}
		b.aliases[acquiror] = append(b.aliases[acquiror], assignee)
	}
}

// Summary finalizes the aggregation.
func (b *Builder) Summary() *Summary {
	years := make([]int, 0, len(b.years))
	for y := range b.years {
		years = append(years, y)
	}
	sort.Ints(years)

	rate := 0.0
	if b.total > 0 {
		rate = float64(b.matched) / float64(b.total) * 100
	}
	zap.L().Info("aggregation complete",
		zap.Int("rows", b.total),
		zap.Int("matched", b.matched),
		zap.Float64("match_rate_pct", rate),
		zap.Int("dropped_bad_year", b.droppedYear),
		zap.Int("acquirors", len(b.stats)))

	return &Summary{
		Stats:       b.stats,
		Years:       years,
		Aliases:     b.aliases,
		TotalRows:   b.total,
		MatchedRows: b.matched,
		DroppedYear: b.droppedYear,
	}
}

// InventorCount returns the larger of the numeric inventors column and
// the number of non-blank positional name columns.
func InventorCount(rec model.PatentRecord) int {
	fromColumn := 0
	if f, err := strconv.ParseFloat(strings.TrimSpace(rec.Inventors), 64); err == nil && f > 0 {
		fromColumn = int(f)
	}

	fromNames := 0
	for _, name := range rec.InventorNames() {
		if strings.TrimSpace(name) != "" {
			fromNames++
		}
	}

	if fromNames > fromColumn {
		return fromNames
	}
	return fromColumn
}

// coerceYear parses registry year values, tolerating float renderings
// like "1995.0" that spreadsheet round-trips produce.
func coerceYear(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}
