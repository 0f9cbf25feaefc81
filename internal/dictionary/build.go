package dictionary

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/acuity-research/patentlink/internal/model"
)

// Entry is one assignee-to-acquiror row contributed by a source.
type Entry struct {
	Assignee string
	Acquiror string
}

// Source yields the rows of one reviewed or auto-matched batch. Order
// of sources matters: earlier sources win on conflicting keys, so
// manually reviewed batches should come before automatic ones.
type Source interface {
	Name() string
	Entries() ([]Entry, error)
}

// SliceSource adapts in-memory rows to the Source interface.
type SliceSource struct {
	File string
	Rows []Entry
}

func (s SliceSource) Name() string { return s.File }

func (s SliceSource) Entries() ([]Entry, error) { return s.Rows, nil }

// EntriesFromMatches projects a match batch onto the two columns the
// merge consumes.
func EntriesFromMatches(records []model.MatchRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{
			Assignee: r.AssigneeOriginal,
			Acquiror: r.OriginalAcquirorName,
		})
	}
	return entries
}

// BuildResult holds the merged master dictionary plus everything a
// reviewer needs to audit how it was assembled.
type BuildResult struct {
	Mapping   map[string]string
	Conflicts []model.ConflictRecord
	Stats     []model.SourceStats
}

// Build folds the sources into a single master dictionary. The fold is
// strictly ordered and first-wins: once a key is mapped, later sources
// can only confirm it (a duplicate) or disagree with it (a conflict
// that is logged and ignored). A source that cannot be read is skipped
// with a logged error rather than aborting the batch; an empty final
// mapping is a terminal error.
func Build(sources []Source) (*BuildResult, error) {
	result := &BuildResult{Mapping: make(map[string]string)}

	for _, src := range sources {
		entries, err := src.Entries()
		if err != nil {
			zap.L().Error("skipping unreadable source",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}

		stats := model.SourceStats{File: src.Name()}
		for _, e := range entries {
			assignee := strings.TrimSpace(e.Assignee)
			acquiror := strings.TrimSpace(e.Acquiror)
			if assignee == "" || acquiror == "" {
				continue
			}
			stats.ValidRows++

			existing, ok := result.Mapping[assignee]
			switch {
			case !ok:
				result.Mapping[assignee] = acquiror
				stats.NewMappings++
			case existing == acquiror:
				stats.Duplicates++
			default:
				stats.Conflicts++
				result.Conflicts = append(result.Conflicts, model.ConflictRecord{
					Assignee:         assignee,
					ExistingAcquiror: existing,
					NewAcquiror:      acquiror,
					SourceFile:       src.Name(),
				})
				zap.L().Warn("conflicting mapping, keeping first",
					zap.String("assignee", assignee),
					zap.String("existing", existing),
					zap.String("ignored", acquiror),
					zap.String("source", src.Name()))
			}
		}

		zap.L().Info("source merged",
			zap.String("source", src.Name()),
			zap.Int("valid_rows", stats.ValidRows),
			zap.Int("new", stats.NewMappings),
			zap.Int("duplicates", stats.Duplicates),
			zap.Int("conflicts", stats.Conflicts))
		result.Stats = append(result.Stats, stats)
	}

	if len(result.Mapping) == 0 {
		return nil, eris.New("dictionary: no mappings extracted from any source")
	}
	return result, nil
}

// VariantCount reports how many assignee spellings map to one acquiror.
type VariantCount struct {
	Acquiror string
	Variants int
}

// TopVariants returns the n acquirors with the most assignee variants,
// most-aliased first, name-ascending on ties.
func (r *BuildResult) TopVariants(n int) []VariantCount {
	counts := make(map[string]int)
	for _, acquiror := range r.Mapping {
		counts[acquiror]++
	}

	out := make([]VariantCount, 0, len(counts))
	for acquiror, c := range counts {
		out = append(out, VariantCount{Acquiror: acquiror, Variants: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Variants != out[j].Variants {
			return out[i].Variants > out[j].Variants
		}
		return out[i].Acquiror < out[j].Acquiror
	})

	if n < len(out) {
		out = out[:n]
	}
	return out
}
