package signal

import (
	"math"

	"govigil/domain/core"
)

// ScoringConfig is the flat, strongly-typed set of tunables consumed by the
// engine. The hierarchical override mechanism that produced it lives
// upstream; the engine validates once per batch and never merges.
type ScoringConfig struct {
	Disprop  DisproportionalityConfig `json:"disproportionality"`
	Bayes    BayesConfig              `json:"bayes"`
	Temporal TemporalConfig           `json:"temporal"`
	Layer1   Layer1Config             `json:"layer1"`
	Layer2   Layer2Config             `json:"layer2"`
	Fusion   FusionConfig             `json:"fusion"`

	// MaxParallelism bounds concurrent per-pair scoring; <=0 means one
	// worker per CPU.
	MaxParallelism int `json:"max_parallelism,omitempty"`
}

// DisproportionalityConfig tunes the classical 2x2 metrics
type DisproportionalityConfig struct {
	MinCount     int64   `json:"min_count"`
	PRRThreshold float64 `json:"prr_threshold"`
}

// BayesConfig tunes the empirical-Bayes shrinkage estimator
type BayesConfig struct {
	// SignalThreshold is the EB05 cutoff for flagging (default 2.0).
	SignalThreshold float64 `json:"signal_threshold"`

	// FDRTarget is the Benjamini-Hochberg false discovery rate (default 0.05).
	FDRTarget float64 `json:"fdr_target"`

	// Fallback prior used when the batch cannot support a moment fit.
	DefaultPriorShape float64 `json:"default_prior_shape"`
	DefaultPriorRate  float64 `json:"default_prior_rate"`
}

// TemporalConfig tunes spike, trend, and novelty analysis
type TemporalConfig struct {
	SpikeWindow     int     `json:"spike_window"`
	SpikeZThreshold float64 `json:"spike_z_threshold"`

	TrendWindow int     `json:"trend_window"`
	TrendAlpha  float64 `json:"trend_alpha"`

	// Novelty half-lives in days; labeled (known) effects use the shorter
	// emerging window.
	NoveltyHalfLifeDays        float64 `json:"novelty_half_life_days"`
	NoveltyHalfLifeLabeledDays float64 `json:"novelty_half_life_labeled_days"`

	// Convex weights over the three novelty terms.
	NoveltyRecencyWeight float64 `json:"novelty_recency_weight"`
	NoveltyVolumeWeight  float64 `json:"novelty_volume_weight"`
	NoveltyGrowthWeight  float64 `json:"novelty_growth_weight"`
}

// Layer1Config tunes the single-source composite scorer
type Layer1Config struct {
	RarityWeight      float64 `json:"rarity_weight"`
	SeriousnessWeight float64 `json:"seriousness_weight"`
	RecencyWeight     float64 `json:"recency_weight"`
	CountWeight       float64 `json:"count_weight"`

	PairBoostThreshold   float64 `json:"pair_boost_threshold"`
	TripleBoostThreshold float64 `json:"triple_boost_threshold"`

	RareSeriousBoost   float64 `json:"rare_serious_boost"`
	RareRecentBoost    float64 `json:"rare_recent_boost"`
	SeriousRecentBoost float64 `json:"serious_recent_boost"`
	AllThreeBoost      float64 `json:"all_three_boost"`

	TunnelBandLow  float64 `json:"tunnel_band_low"`
	TunnelBandHigh float64 `json:"tunnel_band_high"`
	TunnelBonus    float64 `json:"tunnel_bonus"`

	// CountCap saturates the count sub-score (capped linear scale).
	CountCap int64 `json:"count_cap"`
}

// Layer2Config tunes the multi-source composite scorer
type Layer2Config struct {
	FrequencyWeight float64 `json:"frequency_weight"`
	SeverityWeight  float64 `json:"severity_weight"`
	BurstWeight     float64 `json:"burst_weight"`
	NoveltyWeight   float64 `json:"novelty_weight"`
	ConsensusWeight float64 `json:"consensus_weight"`
	MechanismWeight float64 `json:"mechanism_weight"`
}

// FusionConfig tunes the final weighted combination. The layer-1 score is
// squashed through x/(1+x) before entering the convex sum so the unbounded
// ranking signal cannot dominate the bounded terms.
type FusionConfig struct {
	EvidenceWeight float64 `json:"evidence_weight"`
	Layer1Weight   float64 `json:"layer1_weight"`
	Layer2Weight   float64 `json:"layer2_weight"`
}

// DefaultScoringConfig returns the platform defaults for every tunable.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		Disprop: DisproportionalityConfig{
			MinCount:     3,
			PRRThreshold: 2.0,
		},
		Bayes: BayesConfig{
			SignalThreshold:   2.0,
			FDRTarget:         0.05,
			DefaultPriorShape: 2.0,
			DefaultPriorRate:  4.0,
		},
		Temporal: TemporalConfig{
			SpikeWindow:                30,
			SpikeZThreshold:            3.0,
			TrendWindow:                12,
			TrendAlpha:                 0.05,
			NoveltyHalfLifeDays:        90,
			NoveltyHalfLifeLabeledDays: 30,
			NoveltyRecencyWeight:       0.5,
			NoveltyVolumeWeight:        0.25,
			NoveltyGrowthWeight:        0.25,
		},
		Layer1: Layer1Config{
			RarityWeight:         0.40,
			SeriousnessWeight:    0.35,
			RecencyWeight:        0.20,
			CountWeight:          0.05,
			PairBoostThreshold:   0.7,
			TripleBoostThreshold: 0.6,
			RareSeriousBoost:     0.15,
			RareRecentBoost:      0.10,
			SeriousRecentBoost:   0.10,
			AllThreeBoost:        0.20,
			TunnelBandLow:        0.5,
			TunnelBandHigh:       0.7,
			TunnelBonus:          0.05,
			CountCap:             50,
		},
		Layer2: Layer2Config{
			FrequencyWeight: 0.25,
			SeverityWeight:  0.20,
			BurstWeight:     0.15,
			NoveltyWeight:   0.15,
			ConsensusWeight: 0.15,
			MechanismWeight: 0.10,
		},
		Fusion: FusionConfig{
			EvidenceWeight: 0.35,
			Layer1Weight:   0.40,
			Layer2Weight:   0.25,
		},
	}
}

const convexTolerance = 1e-9

func convex(weights ...float64) bool {
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return false
		}
		sum += w
	}
	return math.Abs(sum-1.0) <= convexTolerance
}

// Validate rejects configurations that would make scoring meaningless.
// Called once before any scoring begins; a failure aborts the whole batch.
func (c ScoringConfig) Validate() error {
	if c.Disprop.MinCount < 0 {
		return core.NewValidationError("disproportionality.min_count", "must be non-negative")
	}
	if c.Disprop.PRRThreshold <= 0 {
		return core.NewValidationError("disproportionality.prr_threshold", "must be positive")
	}
	if c.Bayes.SignalThreshold <= 0 {
		return core.NewValidationError("bayes.signal_threshold", "must be positive")
	}
	if c.Bayes.FDRTarget <= 0 || c.Bayes.FDRTarget >= 1 {
		return core.NewValidationError("bayes.fdr_target", "must be in (0,1)")
	}
	if c.Bayes.DefaultPriorShape <= 0 || c.Bayes.DefaultPriorRate <= 0 {
		return core.NewValidationError("bayes.default_prior", "shape and rate must be positive")
	}
	if c.Temporal.SpikeWindow < 2 {
		return core.NewValidationError("temporal.spike_window", "must be at least 2")
	}
	if c.Temporal.SpikeZThreshold <= 0 {
		return core.NewValidationError("temporal.spike_z_threshold", "must be positive")
	}
	if c.Temporal.TrendWindow < 2 {
		return core.NewValidationError("temporal.trend_window", "must be at least 2")
	}
	if c.Temporal.TrendAlpha <= 0 || c.Temporal.TrendAlpha >= 1 {
		return core.NewValidationError("temporal.trend_alpha", "must be in (0,1)")
	}
	if c.Temporal.NoveltyHalfLifeDays <= 0 || c.Temporal.NoveltyHalfLifeLabeledDays <= 0 {
		return core.NewValidationError("temporal.novelty_half_life", "must be positive")
	}
	if !convex(c.Temporal.NoveltyRecencyWeight, c.Temporal.NoveltyVolumeWeight, c.Temporal.NoveltyGrowthWeight) {
		return core.NewValidationError("temporal.novelty_weights", "must form a convex combination")
	}
	if !convex(c.Layer1.RarityWeight, c.Layer1.SeriousnessWeight, c.Layer1.RecencyWeight, c.Layer1.CountWeight) {
		return core.NewValidationError("layer1.weights", "must form a convex combination")
	}
	if c.Layer1.PairBoostThreshold <= 0 || c.Layer1.PairBoostThreshold > 1 {
		return core.NewValidationError("layer1.pair_boost_threshold", "must be in (0,1]")
	}
	if c.Layer1.TripleBoostThreshold <= 0 || c.Layer1.TripleBoostThreshold > 1 {
		return core.NewValidationError("layer1.triple_boost_threshold", "must be in (0,1]")
	}
	if c.Layer1.RareSeriousBoost < 0 || c.Layer1.RareRecentBoost < 0 ||
		c.Layer1.SeriousRecentBoost < 0 || c.Layer1.AllThreeBoost < 0 {
		return core.NewValidationError("layer1.boosts", "must be non-negative")
	}
	if c.Layer1.TunnelBandLow < 0 || c.Layer1.TunnelBandHigh <= c.Layer1.TunnelBandLow {
		return core.NewValidationError("layer1.tunnel_band", "band high must exceed band low")
	}
	if c.Layer1.TunnelBonus < 0 {
		return core.NewValidationError("layer1.tunnel_bonus", "must be non-negative")
	}
	if c.Layer1.CountCap <= 0 {
		return core.NewValidationError("layer1.count_cap", "must be positive")
	}
	if !convex(c.Layer2.FrequencyWeight, c.Layer2.SeverityWeight, c.Layer2.BurstWeight,
		c.Layer2.NoveltyWeight, c.Layer2.ConsensusWeight, c.Layer2.MechanismWeight) {
		return core.NewValidationError("layer2.weights", "must form a convex combination")
	}
	if !convex(c.Fusion.EvidenceWeight, c.Fusion.Layer1Weight, c.Fusion.Layer2Weight) {
		return core.NewValidationError("fusion.weights", "must form a convex combination")
	}
	return nil
}
