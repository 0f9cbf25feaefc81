// Package match links normalized assignee names to an acquiror roster
// through exact and bounded approximate string matching, with a
// volume-tiered policy over review routing.
package match

import (
	"sort"

	"github.com/acuity-research/patentlink/internal/model"
)

// CandidateSet is a deduplicated, read-only roster of clean acquiror
// names. Enumeration order is fixed (lexicographic) so approximate
// matching is deterministic: among equally scored candidates the
// lexicographically smallest wins.
type CandidateSet struct {
	members map[string]struct{}
	ordered []string
	display map[string]string
}

// Cleaner derives the canonical form of a raw name.
type Cleaner interface {
	Normalize(raw string) string
}

// BuildCandidateSet normalizes a roster of display names into a
// candidate set. Names that normalize to the empty string are dropped;
// the first display name seen for a clean form becomes its resolution.
func BuildCandidateSet(displayNames []string, cleaner Cleaner) *CandidateSet {
	c := &CandidateSet{
		members: make(map[string]struct{}),
		display: make(map[string]string),
	}
	for _, orig := range displayNames {
		clean := cleaner.Normalize(orig)
		if clean == "" {
			continue
		}
		if _, seen := c.members[clean]; seen {
			continue
		}
		c.members[clean] = struct{}{}
		c.ordered = append(c.ordered, clean)
		c.display[clean] = orig
	}
	sort.Strings(c.ordered)
	return c
}

// Len reports the number of distinct clean candidates.
func (c *CandidateSet) Len() int { return len(c.ordered) }

// Contains reports exact membership of a clean name.
func (c *CandidateSet) Contains(clean string) bool {
	_, ok := c.members[clean]
	return ok
}

// Display resolves a clean candidate back to its original display name.
func (c *CandidateSet) Display(clean string) string {
	return c.display[clean]
}

// Mode selects the matching strategy.
type Mode int

const (
	// Exact requires byte-identical membership in the candidate set.
	Exact Mode = iota
	// Approximate scans every candidate with TokenSetRatio.
	Approximate
)

// Policy bounds a single match call.
type Policy struct {
	Mode      Mode
	Threshold float64
}

// Result is a successful engine match: the winning clean candidate,
// its score, and whether the hit was exact.
type Result struct {
	Candidate string
	Score     float64
	Kind      model.MatchKind
}

// Match resolves one clean query against the candidate set under the
// given policy. Returns nil when nothing qualifies: in Exact mode when
// the query is not a member, in Approximate mode when no candidate
// reaches the threshold. Pure with respect to its inputs.
func Match(queryClean string, candidates *CandidateSet, policy Policy) *Result {
	if queryClean == "" {
		return nil
	}

	if policy.Mode == Exact {
		if candidates.Contains(queryClean) {
			return &Result{Candidate: queryClean, Score: 100, Kind: model.MatchStrict}
		}
		return nil
	}

	var best *Result
	for _, cand := range candidates.ordered {
		score := TokenSetRatio(queryClean, cand)
		if score < policy.Threshold {
			continue
		}
		// Strictly greater keeps the first (smallest) candidate on ties.
		if best == nil || score > best.Score {
			best = &Result{Candidate: cand, Score: score, Kind: model.MatchFuzzy}
		}
	}
	return best
}
