package match

import (
	"sort"

	"github.com/acuity-research/patentlink/internal/model"
)

// Tiers partitions the volume-ranked assignee list. The three slices
// are disjoint and together cover every input entity.
type Tiers struct {
	Tier1 []model.AssigneeSummary
	Tier2 []model.AssigneeSummary
	Tier3 []model.AssigneeSummary
}

// TierOptions holds the partition policy knobs.
type TierOptions struct {
	// Tier1Fraction of the ranked list (by patent count, descending)
	// lands in Tier1. The cutoff index truncates: floor(fraction * N).
	Tier1Fraction float64
	// Tier2MinPatents splits the remainder: strictly more goes to
	// Tier2, the rest to Tier3.
	Tier2MinPatents int
}

// Partition ranks the summaries by patent count descending and splits
// them into volume tiers. The input slice is not mutated.
func Partition(summaries []model.AssigneeSummary, opts TierOptions) Tiers {
	ranked := make([]model.AssigneeSummary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PatentCount > ranked[j].PatentCount
	})

	cutoff := int(opts.Tier1Fraction * float64(len(ranked)))

	t := Tiers{Tier1: ranked[:cutoff]}
	for _, s := range ranked[cutoff:] {
		if s.PatentCount > opts.Tier2MinPatents {
			t.Tier2 = append(t.Tier2, s)
		} else {
			t.Tier3 = append(t.Tier3, s)
		}
	}
	return t
}
