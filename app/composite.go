package app

import (
	"govigil/domain/signal"
)

// Squash maps the unbounded layer-1 score into [0,1) before the convex
// fusion sum: s(x) = x/(1+x). Monotone, so layer-1 ordering is preserved,
// and bounded, so the unbounded ranking signal cannot dominate the bounded
// fusion terms under fixed weights.
func Squash(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return x / (1 + x)
}

// finalizeComposite computes the fusion score and alert tier for a fully
// scored pair. Runs after the multiplicity barrier because the evidence
// term reads the adjusted Bayesian flag.
func (s *FusionService) finalizeComposite(r *signal.FusionResult) {
	w := s.cfg.Fusion

	score := w.EvidenceWeight*s.evidenceStrength(r) +
		w.Layer1Weight*Squash(r.Quantum.Layer1.Score) +
		w.Layer2Weight*r.Quantum.Layer2.Score

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	r.CompositeScore = score
	r.Tier = signal.TierFor(score)
}

// evidenceStrength combines the Bayesian, causality, and temporal results
// into one bounded term: the mean over whichever components were computed.
// An entirely absent evidence set contributes zero rather than a guess.
func (s *FusionService) evidenceStrength(r *signal.FusionResult) float64 {
	var sum float64
	var n int

	if r.Bayesian != nil {
		sum += s.bayesStrength(*r.Bayesian)
		n++
	}
	if r.Causality != nil {
		sum += causalityStrength(*r.Causality)
		n++
	}
	if r.Temporal != nil {
		sum += temporalStrength(*r.Temporal)
		n++
	}

	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// bayesStrength saturates at 1 once the shrunk lower bound clears the
// signal threshold; the BH-adjusted flag adds nothing beyond that because
// the flag is already threshold-derived.
func (s *FusionService) bayesStrength(b signal.BayesianResult) float64 {
	if b.Signal {
		return 1.0
	}
	// EB05 below threshold scales linearly toward it.
	strength := b.EB05 / s.cfg.Bayes.SignalThreshold
	if strength > 1 {
		strength = 1
	}
	if strength < 0 {
		strength = 0
	}
	return strength
}

var umcStrengths = map[signal.UMCCategory]float64{
	signal.UMCCertain:      1.0,
	signal.UMCProbable:     0.75,
	signal.UMCPossible:     0.5,
	signal.UMCConditional:  0.3,
	signal.UMCUnassessable: 0.2,
	signal.UMCUnlikely:     0.0,
}

var naranjoStrengths = map[signal.NaranjoCategory]float64{
	signal.NaranjoDefinite: 1.0,
	signal.NaranjoProbable: 0.75,
	signal.NaranjoPossible: 0.5,
	signal.NaranjoDoubtful: 0.0,
}

// causalityStrength averages the two independent verdicts without forcing
// agreement between them.
func causalityStrength(c signal.CausalityResult) float64 {
	return (umcStrengths[c.UMC] + naranjoStrengths[c.NaranjoCategory]) / 2
}

// temporalStrength blends novelty, spike evidence, and trend direction
func temporalStrength(t signal.TemporalResult) float64 {
	strength := 0.4 * t.Novelty

	if z := t.MaxSpikeZ(); z > 0 {
		spike := z / 6.0
		if spike > 1 {
			spike = 1
		}
		strength += 0.4 * spike
	}
	if t.Trend == signal.TrendIncreasing {
		strength += 0.2
	}

	if strength > 1 {
		strength = 1
	}
	return strength
}
