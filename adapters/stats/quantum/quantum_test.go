package quantum

import (
	"math"
	"testing"
	"time"

	"govigil/domain/signal"
)

func defaultScorer() *Scorer {
	cfg := signal.DefaultScoringConfig()
	return NewScorer(cfg.Layer1, cfg.Layer2)
}

func TestScoreLayer1_RareSeriousRecentPair(t *testing.T) {
	// 90 of 2000 drug reports, all fatal, reported today: every axis clears
	// both boost thresholds, so all four boosts apply and the score exceeds 1.
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	in := signal.PairInput{
		Drug:             "drugA",
		Event:            "eventX",
		Table:            signal.ContingencyTable{A: 90, B: 1910, C: 100, D: 97900},
		Seriousness:      signal.SeriousnessProfile{Death: 90},
		MostRecentReport: asOf,
	}

	c := defaultScorer().ScoreLayer1(in, asOf)

	if math.Abs(c.Rarity-0.955) > 1e-9 {
		t.Errorf("rarity = %.4f, want 0.955", c.Rarity)
	}
	if c.Seriousness != 1.0 || c.Recency != 1.0 || c.Count != 1.0 {
		t.Errorf("sub-scores = (%.2f, %.2f, %.2f), want all 1.0", c.Seriousness, c.Recency, c.Count)
	}
	if math.Abs(c.Base-0.982) > 1e-9 {
		t.Errorf("base = %.4f, want 0.982", c.Base)
	}
	if len(c.Boosts) != 4 {
		t.Fatalf("expected 4 interaction boosts, got %d: %v", len(c.Boosts), c.Boosts)
	}
	if c.Tunneling != 0 {
		t.Errorf("tunneling = %.4f, want 0 when every axis clears the band", c.Tunneling)
	}
	// 0.982 + 0.15 + 0.10 + 0.10 + 0.20
	if math.Abs(c.Score-1.532) > 1e-9 {
		t.Errorf("score = %.4f, want 1.532", c.Score)
	}
}

func TestScoreLayer1_TunnelingBand(t *testing.T) {
	// Rarity 0.6 sits in the near-miss band: no boosts, one tunneling bonus.
	in := signal.PairInput{
		Drug:  "drugB",
		Event: "eventY",
		Table: signal.ContingencyTable{A: 800, B: 1200, C: 50, D: 97950},
	}

	c := defaultScorer().ScoreLayer1(in, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	if math.Abs(c.Rarity-0.6) > 1e-9 {
		t.Fatalf("rarity = %.4f, want 0.6", c.Rarity)
	}
	if len(c.Boosts) != 0 {
		t.Errorf("expected no boosts, got %v", c.Boosts)
	}
	if math.Abs(c.Tunneling-0.05) > 1e-9 {
		t.Errorf("tunneling = %.4f, want 0.05", c.Tunneling)
	}
	if math.Abs(c.Score-(c.Base+0.05)) > 1e-9 {
		t.Errorf("score = %.4f, want base %.4f plus tunneling", c.Score, c.Base)
	}
}

func TestScoreLayer1_RecencyBuckets(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		ageDays int
		want    float64
	}{
		{0, 1.0},
		{30, 1.0},
		{31, 0.8},
		{90, 0.8},
		{180, 0.6},
		{365, 0.4},
		{730, 0.2},
		{2000, 0.1},
	}

	scorer := defaultScorer()
	for _, tc := range cases {
		in := signal.PairInput{
			Table:            signal.ContingencyTable{A: 1, B: 99, C: 1, D: 899},
			MostRecentReport: asOf.AddDate(0, 0, -tc.ageDays),
		}
		c := scorer.ScoreLayer1(in, asOf)
		if c.Recency != tc.want {
			t.Errorf("age %d days: recency = %.2f, want %.2f", tc.ageDays, c.Recency, tc.want)
		}
	}

	// Unknown report date scores as fully stale.
	c := scorer.ScoreLayer1(signal.PairInput{Table: signal.ContingencyTable{A: 1, B: 99, C: 1, D: 899}}, asOf)
	if c.Recency != 0 {
		t.Errorf("zero report time: recency = %.2f, want 0", c.Recency)
	}
}

func TestScoreLayer2_BoundedByConstruction(t *testing.T) {
	scorer := defaultScorer()
	temporal := &signal.TemporalResult{
		Spikes:  []signal.Spike{{ZScore: 25}},
		Trend:   signal.TrendIncreasing,
		Novelty: 1.0,
	}

	inputs := []signal.PairInput{
		{Table: signal.ContingencyTable{A: 2000, B: 100, C: 1, D: 1}, Seriousness: signal.SeriousnessProfile{Death: 2000, Hospitalization: 2000}, SourcesCorroborating: 4, SourcesQueried: 4, MechanismScore: 1.0},
		{Table: signal.ContingencyTable{A: 1, B: 1, C: 1, D: 1}},
	}
	for _, in := range inputs {
		c := scorer.ScoreLayer2(in, temporal)
		if c.Score < 0 || c.Score > 1 {
			t.Errorf("layer-2 score %.4f out of [0,1] for %+v", c.Score, in.Table)
		}
	}

	// Maximal evidence on every axis reaches exactly 1.
	c := scorer.ScoreLayer2(inputs[0], temporal)
	if math.Abs(c.Score-1.0) > 1e-9 {
		t.Errorf("fully saturated layer-2 score = %.4f, want 1.0", c.Score)
	}
}

func TestScoreLayer2_FrequencySteps(t *testing.T) {
	cases := []struct {
		a    int64
		want float64
	}{
		{1, 0.1},
		{3, 0.2},
		{10, 0.4},
		{50, 0.6},
		{100, 0.75},
		{500, 0.9},
		{1000, 1.0},
		{5000, 1.0},
	}
	scorer := defaultScorer()
	for _, tc := range cases {
		in := signal.PairInput{Table: signal.ContingencyTable{A: tc.a, B: 1, C: 1, D: 1}}
		c := scorer.ScoreLayer2(in, nil)
		if c.Frequency != tc.want {
			t.Errorf("a=%d: frequency = %.2f, want %.2f", tc.a, c.Frequency, tc.want)
		}
	}
}

func TestScoreLayer2_MissingTemporalContributesZero(t *testing.T) {
	in := signal.PairInput{
		Table:                signal.ContingencyTable{A: 10, B: 990, C: 10, D: 8990},
		SourcesCorroborating: 3,
		SourcesQueried:       4,
	}

	c := defaultScorer().ScoreLayer2(in, nil)

	if c.Burst != 0 || c.Novelty != 0 {
		t.Errorf("burst=%.2f novelty=%.2f, want both 0 without a series", c.Burst, c.Novelty)
	}
	if c.Consensus != 0.75 {
		t.Errorf("consensus = %.2f, want 0.75", c.Consensus)
	}
}

func TestScoreLayer2_SeveritySaturates(t *testing.T) {
	// A case can satisfy several seriousness criteria; the fraction caps at 1.
	in := signal.PairInput{
		Table:       signal.ContingencyTable{A: 10, B: 90, C: 1, D: 899},
		Seriousness: signal.SeriousnessProfile{Death: 10, Hospitalization: 10},
	}
	c := defaultScorer().ScoreLayer2(in, nil)
	if c.Severity != 1.0 {
		t.Errorf("severity = %.2f, want capped at 1.0", c.Severity)
	}
}
