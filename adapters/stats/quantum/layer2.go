package quantum

import (
	"govigil/domain/signal"
)

// burstZDenominator normalizes spike z-scores into [0,1]; a z of 6 (twice
// the default detection threshold) saturates the burst sub-score.
const burstZDenominator = 6.0

// frequencyBreakpoints is the fixed stepped scale over pair case counts.
var frequencyBreakpoints = []struct {
	minCount int64
	score    float64
}{
	{1000, 1.0},
	{500, 0.9},
	{100, 0.75},
	{50, 0.6},
	{10, 0.4},
	{3, 0.2},
}

// ScoreLayer2 computes the multi-source composite. All sub-scores and
// weights are bounded and convex, so the layer score lies in [0,1] by
// construction. The temporal result may be nil when no series was supplied;
// the dependent sub-scores then contribute zero.
func (s *Scorer) ScoreLayer2(in signal.PairInput, temporal *signal.TemporalResult) signal.Layer2Components {
	c := signal.Layer2Components{
		Frequency: frequencySubScore(in.Table.A),
		Severity:  severitySubScore(in),
		Consensus: consensusSubScore(in),
		Mechanism: in.MechanismScore,
	}
	if temporal != nil {
		c.Burst = burstSubScore(*temporal)
		c.Novelty = temporal.Novelty
	}

	c.Score = s.l2.FrequencyWeight*c.Frequency +
		s.l2.SeverityWeight*c.Severity +
		s.l2.BurstWeight*c.Burst +
		s.l2.NoveltyWeight*c.Novelty +
		s.l2.ConsensusWeight*c.Consensus +
		s.l2.MechanismWeight*c.Mechanism
	return c
}

func frequencySubScore(a int64) float64 {
	for _, bp := range frequencyBreakpoints {
		if a >= bp.minCount {
			return bp.score
		}
	}
	return 0.1
}

// severitySubScore is the fraction of the pair's cases with any serious
// outcome, saturating at 1 (a case may satisfy several criteria).
func severitySubScore(in signal.PairInput) float64 {
	if in.Table.A == 0 {
		return 0
	}
	frac := float64(in.Seriousness.Total()) / float64(in.Table.A)
	if frac > 1 {
		frac = 1
	}
	return frac
}

// burstSubScore normalizes the strongest detected spike into [0,1]
func burstSubScore(t signal.TemporalResult) float64 {
	z := t.MaxSpikeZ()
	if z <= 0 {
		return 0
	}
	score := z / burstZDenominator
	if score > 1 {
		score = 1
	}
	return score
}

// consensusSubScore is the fraction of queried sources corroborating the pair
func consensusSubScore(in signal.PairInput) float64 {
	if in.SourcesQueried == 0 {
		return 0
	}
	return float64(in.SourcesCorroborating) / float64(in.SourcesQueried)
}
