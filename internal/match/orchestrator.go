package match

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acuity-research/patentlink/internal/model"
)

// TierPolicy governs one tier's matching pass.
type TierPolicy struct {
	// FuzzyThreshold enables the approximate pass when positive.
	FuzzyThreshold float64
	// ReviewExact routes exact hits to the needs-review channel instead
	// of auto-accepting them. Approximate hits always need review.
	ReviewExact bool
}

// Orchestrator applies the match engine per tier, fanning the
// approximate pass out over row chunks when the batch is large enough
// to pay for the dispatch.
type Orchestrator struct {
	Candidates        *CandidateSet
	MaxWorkers        int
	ParallelThreshold int
}

// NewOrchestrator builds an orchestrator over a fixed candidate set.
func NewOrchestrator(candidates *CandidateSet, maxWorkers, parallelThreshold int) *Orchestrator {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	if parallelThreshold <= 0 {
		parallelThreshold = 100
	}
	return &Orchestrator{
		Candidates:        candidates,
		MaxWorkers:        maxWorkers,
		ParallelThreshold: parallelThreshold,
	}
}

// Run matches every row of a tier. Exact hits route per the policy;
// unmatched rows then go through the approximate pass when enabled.
// Rows matching nothing appear in neither channel: absent from the
// mapping means unresolved, which is a valid terminal state.
func (o *Orchestrator) Run(ctx context.Context, tier model.TierLabel, rows []model.AssigneeSummary, policy TierPolicy) (auto, review []model.MatchRecord, err error) {
	zap.L().Info("match: tier pass started",
		zap.String("tier", string(tier)),
		zap.Int("rows", len(rows)),
		zap.Float64("fuzzy_threshold", policy.FuzzyThreshold),
	)

	var exact []model.MatchRecord
	var unmatched []model.AssigneeSummary
	for _, row := range rows {
		if row.CleanName == "" {
			continue
		}
		res := Match(row.CleanName, o.Candidates, Policy{Mode: Exact})
		if res == nil {
			unmatched = append(unmatched, row)
			continue
		}
		exact = append(exact, o.record(tier, row, res, "Strict"))
	}

	zap.L().Info("match: exact pass done",
		zap.String("tier", string(tier)),
		zap.Int("hits", len(exact)),
		zap.Int("unmatched", len(unmatched)),
	)

	if policy.ReviewExact {
		review = append(review, exact...)
	} else {
		auto = append(auto, exact...)
	}

	if policy.FuzzyThreshold <= 0 || len(unmatched) == 0 {
		return auto, review, nil
	}

	label := fmt.Sprintf("Fuzzy (≥%.0f)", policy.FuzzyThreshold)
	fuzzy, err := o.fuzzyPass(ctx, tier, unmatched, policy.FuzzyThreshold, label)
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("match: fuzzy pass done",
		zap.String("tier", string(tier)),
		zap.Int("hits", len(fuzzy)),
	)

	review = append(review, fuzzy...)
	return auto, review, nil
}

// fuzzyPass scores unmatched rows against every candidate. Above the
// parallel threshold the rows are partitioned into disjoint chunks and
// scored concurrently; results concatenate in chunk order so output is
// deterministic for a fixed input. The candidate set is read-only and
// shared without locking.
func (o *Orchestrator) fuzzyPass(ctx context.Context, tier model.TierLabel, rows []model.AssigneeSummary, threshold float64, label string) ([]model.MatchRecord, error) {
	workers := o.workerCount(len(rows))
	if len(rows) < o.ParallelThreshold || workers < 2 {
		return o.fuzzyChunk(ctx, tier, rows, threshold, label)
	}

	zap.L().Info("match: parallel fuzzy dispatch",
		zap.String("tier", string(tier)),
		zap.Int("rows", len(rows)),
		zap.Int("workers", workers),
	)

	chunks := splitChunks(rows, workers)
	results := make([][]model.MatchRecord, len(chunks))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			recs, err := o.fuzzyChunk(gCtx, tier, chunk, threshold, label)
			if err != nil {
				return err
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.MatchRecord
	for _, recs := range results {
		merged = append(merged, recs...)
	}
	return merged, nil
}

func (o *Orchestrator) fuzzyChunk(ctx context.Context, tier model.TierLabel, rows []model.AssigneeSummary, threshold float64, label string) ([]model.MatchRecord, error) {
	var out []model.MatchRecord
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := Match(row.CleanName, o.Candidates, Policy{Mode: Approximate, Threshold: threshold})
		if res == nil {
			continue
		}
		out = append(out, o.record(tier, row, res, label))
	}
	return out, nil
}

func (o *Orchestrator) record(tier model.TierLabel, row model.AssigneeSummary, res *Result, label string) model.MatchRecord {
	return model.MatchRecord{
		AssigneeOriginal:     row.Assignee,
		AssigneeClean:        row.CleanName,
		MatchedAcquirorClean: res.Candidate,
		MatchType:            label,
		Kind:                 res.Kind,
		Score:                res.Score,
		Tier:                 tier,
		OriginalAcquirorName: o.Candidates.Display(res.Candidate),
	}
}

// workerCount caps the fan-out at MaxWorkers and cores-minus-one,
// leaving headroom for the rest of the machine.
func (o *Orchestrator) workerCount(rows int) int {
	n := runtime.NumCPU() - 1
	if n > o.MaxWorkers {
		n = o.MaxWorkers
	}
	if n > rows {
		n = rows
	}
	if n < 1 {
		n = 1
	}
	return n
}

// splitChunks partitions rows into n contiguous slices covering the
// input in order.
func splitChunks(rows []model.AssigneeSummary, n int) [][]model.AssigneeSummary {
	if n < 1 {
		n = 1
	}
	chunks := make([][]model.AssigneeSummary, 0, n)
	size := (len(rows) + n - 1) / n
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
