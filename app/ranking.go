package app

import (
	"fmt"
	"sort"

	"govigil/domain/core"
	"govigil/domain/signal"
)

// rankBatch assigns rank and percentile once every composite score is
// known: sort descending by composite score, break ties by raw case count
// then lexicographically by drug and event name so identical inputs always
// produce identical output. Error-marked results stay unranked.
func rankBatch(results []signal.FusionResult) {
	scored := make([]*signal.FusionResult, 0, len(results))
	for i := range results {
		if !results[i].Failed() {
			scored = append(scored, &results[i])
		}
	}
	if len(scored) == 0 {
		return
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.Table.A != b.Table.A {
			return a.Table.A > b.Table.A
		}
		if a.Drug != b.Drug {
			return a.Drug < b.Drug
		}
		return a.Event < b.Event
	})

	size := float64(len(scored))
	for i, r := range scored {
		r.Rank = i + 1
		r.Percentile = 100 * (1 - float64(r.Rank)/size)
	}
}

// fingerprint hashes the canonical per-pair outcome lines. Lines are sorted
// inside the hash computation, so scoring parallelism cannot affect it.
func fingerprint(results []signal.FusionResult) core.BatchFingerprint {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if r.Failed() {
			lines = append(lines, fmt.Sprintf("%s\x1f%s\x1ferror\x1f%s", r.Drug, r.Event, r.Error))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s\x1f%s\x1f%s\x1f%d\x1f%s",
			r.Drug, r.Event, core.CanonicalFloat(r.CompositeScore), r.Rank, r.Tier))
	}
	return core.ComputeBatchFingerprint(lines)
}
