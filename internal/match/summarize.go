package match

import (
	"sort"
	"strings"

	"github.com/acuity-research/patentlink/internal/aggregate"
	"github.com/acuity-research/patentlink/internal/model"
)

// Summarize groups registry rows into one summary per distinct raw
// assignee spelling: its clean form, patent count, and inventor total.
// Rows with a blank assignee or an empty clean form are dropped. The
// result is ranked by patent count descending, ties by assignee
// ascending, ready for tier partitioning.
func Summarize(records []model.PatentRecord, cleaner Cleaner) []model.AssigneeSummary {
	type key struct{ assignee, clean string }

	cleanCache := make(map[string]string)
	totals := make(map[key]*model.AssigneeSummary)
	var order []key
	for _, rec := range records {
		assignee := strings.TrimSpace(rec.Assignee)
		if assignee == "" {
			continue
		}

		clean, ok := cleanCache[assignee]
		if !ok {
			clean = cleaner.Normalize(assignee)
			cleanCache[assignee] = clean
		}
		if clean == "" {
			continue
		}

		k := key{assignee, clean}
		s, ok := totals[k]
		if !ok {
			s = &model.AssigneeSummary{Assignee: assignee, CleanName: clean}
			totals[k] = s
			order = append(order, k)
		}
		s.PatentCount++
		s.InventorSum += aggregate.InventorCount(rec)
	}

	out := make([]model.AssigneeSummary, 0, len(order))
	for _, k := range order {
		out = append(out, *totals[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PatentCount != out[j].PatentCount {
			return out[i].PatentCount > out[j].PatentCount
		}
		return out[i].Assignee < out[j].Assignee
	})
	return out
}
