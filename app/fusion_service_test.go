package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govigil/domain/core"
	"govigil/domain/signal"
	"govigil/internal/testkit"
)

func newTestService(t *testing.T, mutate func(*signal.ScoringConfig)) *FusionService {
	t.Helper()
	cfg := signal.DefaultScoringConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	service, err := NewFusionService(cfg)
	require.NoError(t, err)
	return service
}

func TestNewFusionService_RejectsInvalidConfig(t *testing.T) {
	cfg := signal.DefaultScoringConfig()
	cfg.Fusion.Layer1Weight = 0.9 // weights no longer convex

	_, err := NewFusionService(cfg)
	require.Error(t, err)
	assert.True(t, core.IsConfigError(err), "expected a config error, got %v", err)
}

func TestScoreBatch_EmptyBatch(t *testing.T) {
	service := newTestService(t, nil)
	_, err := service.ScoreBatch(context.Background(), BatchRequest{})
	assert.ErrorIs(t, err, core.ErrEmptyBatch)
}

func TestScoreBatch_DeterministicAcrossParallelism(t *testing.T) {
	pairs := testkit.NewBatchGenerator(7).Batch(40)
	serial := newTestService(t, func(c *signal.ScoringConfig) { c.MaxParallelism = 1 })
	parallel := newTestService(t, func(c *signal.ScoringConfig) { c.MaxParallelism = 8 })

	first, err := serial.ScoreBatch(context.Background(), BatchRequest{Pairs: pairs})
	require.NoError(t, err)
	second, err := parallel.ScoreBatch(context.Background(), BatchRequest{Pairs: pairs})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Prior, second.Prior)
	require.Len(t, second.Results, len(first.Results))
	for i := range first.Results {
		a, b := first.Results[i], second.Results[i]
		assert.Equal(t, a.Drug, b.Drug)
		assert.Equal(t, a.CompositeScore, b.CompositeScore, "pair %s/%s", a.Drug, a.Event)
		assert.Equal(t, a.Rank, b.Rank)
		assert.Equal(t, a.Percentile, b.Percentile)
		assert.Equal(t, a.Tier, b.Tier)
	}
}

func TestScoreBatch_RankingAndPercentiles(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pairs := []signal.PairInput{
		{
			Drug: "weakdrug", Event: "headache",
			Table: signal.ContingencyTable{A: 3, B: 2997, C: 3000, D: 994000},
		},
		{
			Drug: "strongdrug", Event: "hepatic failure",
			Table:                signal.ContingencyTable{A: 90, B: 1910, C: 100, D: 97900},
			Seriousness:          signal.SeriousnessProfile{Death: 90},
			MostRecentReport:     asOf,
			SourcesCorroborating: 4, SourcesQueried: 4,
			MechanismScore: 0.9,
			Clinical: &signal.ClinicalFeatures{
				TimeToOnsetDays: testkit.Onset(5),
				Dechallenge:     signal.DechallengeImproved,
				Rechallenge:     signal.RechallengeRecurred,
			},
		},
		{
			Drug: "middrug", Event: "nausea",
			Table:            signal.ContingencyTable{A: 20, B: 1980, C: 200, D: 97800},
			Seriousness:      signal.SeriousnessProfile{Hospitalization: 5},
			MostRecentReport: asOf.AddDate(0, 0, -400),
			SourcesQueried:   4,
		},
	}

	batch, err := newTestService(t, nil).ScoreBatch(context.Background(), BatchRequest{Pairs: pairs, AsOf: asOf})
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)

	byRank := make(map[int]signal.FusionResult, 3)
	for _, r := range batch.Results {
		require.Empty(t, r.Error)
		byRank[r.Rank] = r
	}
	require.Len(t, byRank, 3, "ranks must form a permutation of 1..3")

	assert.GreaterOrEqual(t, byRank[1].CompositeScore, byRank[2].CompositeScore)
	assert.GreaterOrEqual(t, byRank[2].CompositeScore, byRank[3].CompositeScore)
	assert.Equal(t, "strongdrug", byRank[1].Drug)

	assert.InDelta(t, 66.667, byRank[1].Percentile, 0.001)
	assert.InDelta(t, 33.333, byRank[2].Percentile, 0.001)
	assert.InDelta(t, 0.0, byRank[3].Percentile, 0.001)

	for _, r := range batch.Results {
		assert.Equal(t, signal.TierFor(r.CompositeScore), r.Tier)
	}
}

func TestScoreBatch_PairFailureDoesNotAbortBatch(t *testing.T) {
	pairs := testkit.NewBatchGenerator(11).Batch(3)
	pairs = append(pairs, signal.PairInput{
		Drug:  "", // invalid: missing name
		Event: "rash",
		Table: signal.ContingencyTable{A: 5, B: 95, C: 50, D: 850},
	})

	batch, err := newTestService(t, nil).ScoreBatch(context.Background(), BatchRequest{Pairs: pairs})
	require.NoError(t, err)
	require.Len(t, batch.Results, 4)

	failed := batch.Results[3]
	assert.True(t, failed.Failed())
	assert.Zero(t, failed.Rank, "error-marked pairs stay unranked")
	assert.Nil(t, failed.Quantum)

	ranks := map[int]bool{}
	for _, r := range batch.Results[:3] {
		require.Empty(t, r.Error)
		ranks[r.Rank] = true
	}
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true}, ranks)
}

func TestScoreBatch_SkipsOptionalInputsWithoutFailing(t *testing.T) {
	// No clinical features and no series: the dependent sub-results stay
	// absent, everything else is still scored.
	pair := signal.PairInput{
		Drug:  "drugA",
		Event: "eventX",
		Table: signal.ContingencyTable{A: 12, B: 988, C: 120, D: 98880},
	}

	batch, err := newTestService(t, nil).ScoreBatch(context.Background(), BatchRequest{Pairs: []signal.PairInput{pair}})
	require.NoError(t, err)

	r := batch.Results[0]
	require.Empty(t, r.Error)
	assert.Nil(t, r.Causality)
	assert.Nil(t, r.Temporal)
	require.NotNil(t, r.Disproportionality)
	require.NotNil(t, r.Bayesian)
	require.NotNil(t, r.Quantum)
	assert.GreaterOrEqual(t, r.CompositeScore, 0.0)
	assert.LessOrEqual(t, r.CompositeScore, 1.0)
}

func TestScoreBatch_DerivesAsOfFromBatch(t *testing.T) {
	// Identical batches scored at different wall-clock times must agree.
	build := func() []signal.PairInput {
		return testkit.NewBatchGenerator(23).Batch(10)
	}

	service := newTestService(t, nil)
	first, err := service.ScoreBatch(context.Background(), BatchRequest{Pairs: build()})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	second, err := service.ScoreBatch(context.Background(), BatchRequest{Pairs: build()})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestScoreOne_SkipsRanking(t *testing.T) {
	pair := signal.PairInput{
		Drug:  "drugA",
		Event: "eventX",
		Table: signal.ContingencyTable{A: 30, B: 970, C: 70, D: 8930},
	}

	result, err := newTestService(t, nil).ScoreOne(context.Background(), pair)
	require.NoError(t, err)
	require.Empty(t, result.Error)

	assert.Zero(t, result.Rank)
	assert.Zero(t, result.Percentile)
	require.NotNil(t, result.Bayesian)
	assert.True(t, result.Bayesian.LowConfidence, "single-pair prior must be the low-confidence fallback")
	assert.NotEmpty(t, result.Tier)
}

func TestSquash(t *testing.T) {
	assert.Equal(t, 0.0, Squash(0))
	assert.Equal(t, 0.0, Squash(-3))
	assert.Equal(t, 0.5, Squash(1))
	assert.InDelta(t, 0.605, Squash(1.532), 0.001)

	// Monotone: layer-1 ordering survives the squash.
	prev := -1.0
	for _, x := range []float64{0.1, 0.5, 1.0, 2.0, 10.0} {
		s := Squash(x)
		assert.Greater(t, s, prev)
		assert.Less(t, s, 1.0)
		prev = s
	}
}

func TestScoreBatch_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(t, nil).ScoreBatch(ctx, BatchRequest{Pairs: testkit.NewBatchGenerator(3).Batch(5)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
