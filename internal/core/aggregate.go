package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Merge sums stamp counts across maps. Inputs are not modified.
// Merging nothing yields an empty, non-nil map.
func Merge(maps ...StampMap) StampMap {
	out := make(StampMap)
	for _, m := range maps {
		for diff, group := range m {
			if len(group) == 0 {
				continue
			}
			dst := out[diff]
			if dst == nil {
				dst = make(map[int]int, len(group))
				out[diff] = dst
			}
			for n, c := range group {
				dst[n] += c
			}
		}
	}
	return out
}

// AnalyzeMany analyzes each query independently and merges the successful ones.
//
// Ranges run concurrently, at most parallelism at a time (unbounded when
// parallelism <= 0). Results keep the order of queries. A failed range is
// reported in its slot and left out of the merge; it never aborts the others.
// Cancelling ctx marks not-yet-started ranges with the context error.
func AnalyzeMany(ctx context.Context, table Table, queries []RangeQuery, parallelism int) *AnalysisResult {
	start := time.Now()

	result := &AnalysisResult{
		ID:     uuid.NewString(),
		Ranges: make([]RangeResult, len(queries)),
		Mode:   modeOf(queries),
	}

	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}

	for i, q := range queries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				result.Ranges[i] = RangeResult{Query: q, Err: err}
				return nil
			}
			stamps, err := AnalyzeQuery(table, q)
			result.Ranges[i] = RangeResult{Query: q, Stamps: stamps, Err: err}
			return nil
		})
	}
	_ = g.Wait() // per-range errors are recorded in their slots

	ok := make([]StampMap, 0, len(queries))
	for _, rr := range result.Ranges {
		if rr.OK() {
			ok = append(ok, rr.Stamps)
		}
	}
	result.Merged = Merge(ok...)
	result.Duration = time.Since(start)

	return result
}
