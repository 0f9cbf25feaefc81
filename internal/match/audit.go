package match

import (
	"fmt"
	"sort"

	"github.com/acuity-research/patentlink/internal/model"
)

// shortNameLen flags clean names below this length as high
// false-positive risk (think "3M").
const shortNameLen = 3

// lowScoreCutoff marks matches worth prioritizing during review.
const lowScoreCutoff = 95

// ScoreSummary describes the similarity score distribution of a batch.
type ScoreSummary struct {
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
}

// AuditStats aggregates the structural risk signals of a match batch.
type AuditStats struct {
	OneToMany  int
	LowScore   int
	ShortNames int
	Scores     ScoreSummary
	MatchTypes map[string]int
}

// Audit scans a completed match batch for structural risk signals.
// Every check is advisory: issues describe what a reviewer should look
// at, nothing blocks the pipeline.
func Audit(records []model.MatchRecord) ([]string, AuditStats) {
	stats := AuditStats{MatchTypes: make(map[string]int)}
	if len(records) == 0 {
		return nil, stats
	}

	var issues []string

	// One source name mapping to several distinct acquirors needs a
	// human to pick one.
	targets := make(map[string]map[string]struct{})
	for _, r := range records {
		if targets[r.AssigneeOriginal] == nil {
			targets[r.AssigneeOriginal] = make(map[string]struct{})
		}
		targets[r.AssigneeOriginal][r.MatchedAcquirorClean] = struct{}{}
	}
	for _, t := range targets {
		if len(t) > 1 {
			stats.OneToMany++
		}
	}
	if stats.OneToMany > 0 {
		issues = append(issues, fmt.Sprintf("warning: %d assignees matched to multiple acquirors, manual resolution needed", stats.OneToMany))
	}

	scores := make([]float64, 0, len(records))
	for _, r := range records {
		scores = append(scores, r.Score)
		if r.Score < lowScoreCutoff {
			stats.LowScore++
		}
		if len(r.AssigneeClean) < shortNameLen {
			stats.ShortNames++
		}
		stats.MatchTypes[r.MatchType]++
	}
	stats.Scores = summarizeScores(scores)

	if stats.LowScore > 0 {
		issues = append(issues, fmt.Sprintf("info: %d matches scored below %d, prioritize for review", stats.LowScore, lowScoreCutoff))
	}
	if stats.ShortNames > 0 {
		issues = append(issues, fmt.Sprintf("warning: %d clean names shorter than %d characters, high false-positive risk", stats.ShortNames, shortNameLen))
	}

	return issues, stats
}

func summarizeScores(scores []float64) ScoreSummary {
	sorted := make([]float64, len(scores))
	copy(sorted, scores)
	sort.Float64s(sorted)

	var sum float64
	for _, s := range sorted {
		sum += s
	}

	return ScoreSummary{
		Min:    sorted[0],
		Q1:     percentile(sorted, 0.25),
		Median: percentile(sorted, 0.5),
		Q3:     percentile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
		Mean:   sum / float64(len(sorted)),
	}
}

// percentile computes the p-quantile of a sorted slice with linear
// interpolation between closest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p * float64(len(sorted)-1)
	lo := int(rank)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
