package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"govigil/domain/signal"
)

func TestRankBatch_TieBreaking(t *testing.T) {
	// Equal composite scores: higher case count wins, then drug name, then
	// event name. The order is total, so reruns cannot swap ranks.
	results := []signal.FusionResult{
		{Drug: "zeta", Event: "rash", CompositeScore: 0.5, Table: signal.ContingencyTable{A: 10}},
		{Drug: "alpha", Event: "rash", CompositeScore: 0.5, Table: signal.ContingencyTable{A: 10}},
		{Drug: "alpha", Event: "nausea", CompositeScore: 0.5, Table: signal.ContingencyTable{A: 30}},
		{Drug: "beta", Event: "rash", CompositeScore: 0.9, Table: signal.ContingencyTable{A: 5}},
	}

	rankBatch(results)

	ranks := map[string]int{}
	for _, r := range results {
		ranks[r.Drug+"/"+r.Event] = r.Rank
	}
	assert.Equal(t, 1, ranks["beta/rash"], "highest score ranks first")
	assert.Equal(t, 2, ranks["alpha/nausea"], "ties break on case count")
	assert.Equal(t, 3, ranks["alpha/rash"], "then on drug name")
	assert.Equal(t, 4, ranks["zeta/rash"])
}

func TestRankBatch_SkipsErrorMarkers(t *testing.T) {
	results := []signal.FusionResult{
		{Drug: "a", Event: "x", CompositeScore: 0.7},
		{Drug: "b", Event: "y", Error: "invalid contingency table"},
	}

	rankBatch(results)

	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, 0.0, results[0].Percentile, "a single ranked pair sits at the bottom percentile")
	assert.Zero(t, results[1].Rank)
}

func TestFingerprint_IgnoresResultOrder(t *testing.T) {
	a := signal.FusionResult{Drug: "a", Event: "x", CompositeScore: 0.7, Rank: 1, Tier: signal.TierModerate}
	b := signal.FusionResult{Drug: "b", Event: "y", CompositeScore: 0.3, Rank: 2, Tier: signal.TierLow}

	assert.Equal(t,
		fingerprint([]signal.FusionResult{a, b}),
		fingerprint([]signal.FusionResult{b, a}))
}

func TestFingerprint_SensitiveToOutcome(t *testing.T) {
	a := signal.FusionResult{Drug: "a", Event: "x", CompositeScore: 0.7, Rank: 1, Tier: signal.TierModerate}
	changed := a
	changed.CompositeScore = 0.71

	assert.NotEqual(t,
		fingerprint([]signal.FusionResult{a}),
		fingerprint([]signal.FusionResult{changed}))
}
