package signal

import (
	"time"

	"govigil/domain/core"
)

// MetricEstimate is a point estimate with its 95% interval and signal flag.
// For IC the lower bound is the one-sided IC025 credibility bound.
type MetricEstimate struct {
	Value   float64 `json:"value"`
	CILower float64 `json:"ci_lower"`
	CIUpper float64 `json:"ci_upper"`
	Signal  bool    `json:"signal"`
}

// DisproportionalityResult holds the classical 2x2 measures. Derived, never
// mutated after construction.
type DisproportionalityResult struct {
	PRR MetricEstimate `json:"prr"`
	ROR MetricEstimate `json:"ror"`
	IC  MetricEstimate `json:"ic"`
}

// AnySignal reports whether any of the three metrics flagged
func (r DisproportionalityResult) AnySignal() bool {
	return r.PRR.Signal || r.ROR.Signal || r.IC.Signal
}

// ShrinkagePrior is the Gamma prior fitted once per batch over all pairs'
// observed/expected ratios. Shared read-only across the batch's per-pair
// posterior computations; each batch gets its own freshly fitted prior.
type ShrinkagePrior struct {
	Shape float64 `json:"shape"`
	Rate  float64 `json:"rate"`

	// PairsFitted is how many pairs contributed to the moment fit
	// (zero-expected pairs are excluded).
	PairsFitted int `json:"pairs_fitted"`

	// LowConfidence marks batches too small to fit a prior reliably; the
	// documented default prior was used instead.
	LowConfidence bool `json:"low_confidence"`
}

// Mean of the prior relative-risk distribution
func (p ShrinkagePrior) Mean() float64 {
	if p.Rate == 0 {
		return 0
	}
	return p.Shape / p.Rate
}

// BayesianResult is the empirical-Bayes shrunk estimate for one pair.
type BayesianResult struct {
	EBGM      float64 `json:"ebgm"`
	EB05      float64 `json:"eb05"`
	EB95      float64 `json:"eb95"`
	RawP      float64 `json:"raw_p"`
	AdjustedP float64 `json:"adjusted_p"`

	// Signal requires EB05 above the configured threshold and the
	// BH-adjusted p below the FDR target.
	Signal bool `json:"signal"`

	// LowConfidence propagates the prior's fallback flag.
	LowConfidence bool `json:"low_confidence"`
}

// UMCCategory is the six-valued WHO-UMC causality classification
type UMCCategory string

const (
	UMCCertain      UMCCategory = "certain"
	UMCProbable     UMCCategory = "probable"
	UMCPossible     UMCCategory = "possible"
	UMCUnlikely     UMCCategory = "unlikely"
	UMCConditional  UMCCategory = "conditional"
	UMCUnassessable UMCCategory = "unassessable"
)

// NaranjoCategory is the four-valued bucket over the Naranjo integer score
type NaranjoCategory string

const (
	NaranjoDefinite NaranjoCategory = "definite"
	NaranjoProbable NaranjoCategory = "probable"
	NaranjoPossible NaranjoCategory = "possible"
	NaranjoDoubtful NaranjoCategory = "doubtful"
)

// CausalityResult reports both deterministic procedures side by side. The
// two verdicts may disagree; downstream never forces agreement.
type CausalityResult struct {
	UMC             UMCCategory     `json:"umc"`
	NaranjoScore    int             `json:"naranjo_score"`
	NaranjoCategory NaranjoCategory `json:"naranjo_category"`
}

// Spike is one detected reporting spike
type Spike struct {
	Timestamp    time.Time `json:"timestamp"`
	Observed     int64     `json:"observed"`
	FoldIncrease float64   `json:"fold_increase"`
	ZScore       float64   `json:"z_score"`
	PValue       float64   `json:"p_value"`
}

// TrendClass is the direction of the recent reporting trend
type TrendClass string

const (
	TrendIncreasing TrendClass = "increasing"
	TrendDecreasing TrendClass = "decreasing"
	TrendStable     TrendClass = "stable"
)

// TemporalResult is the output of the temporal pattern analyzer.
type TemporalResult struct {
	Spikes []Spike    `json:"spikes,omitempty"`
	Trend  TrendClass `json:"trend"`

	// Slope of log(count+1) per period over the regression window.
	Slope float64 `json:"slope"`

	// DoublingPeriods is ln(2)/|slope| in series time units; zero when the
	// trend is stable.
	DoublingPeriods float64 `json:"doubling_periods,omitempty"`

	TrendComputed bool `json:"trend_computed"`

	// Novelty combines recency decay, volume penalty, and growth rate into
	// a [0,1] score.
	Novelty float64 `json:"novelty"`
}

// HasSpike reports whether at least one spike was detected
func (r TemporalResult) HasSpike() bool { return len(r.Spikes) > 0 }

// MaxSpikeZ returns the largest spike z-score, or zero when no spikes
func (r TemporalResult) MaxSpikeZ() float64 {
	var max float64
	for _, s := range r.Spikes {
		if s.ZScore > max {
			max = s.ZScore
		}
	}
	return max
}

// InteractionBoost is one named nonlinear bonus applied by the layer-1 scorer
type InteractionBoost struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Layer1Components is the single-source composite breakdown. The layer score
// is intentionally unbounded above 1.0: it is a ranking signal, not a
// probability.
type Layer1Components struct {
	Rarity      float64 `json:"rarity"`
	Seriousness float64 `json:"seriousness"`
	Recency     float64 `json:"recency"`
	Count       float64 `json:"count"`

	Base      float64            `json:"base"`
	Boosts    []InteractionBoost `json:"boosts,omitempty"`
	Tunneling float64            `json:"tunneling"`
	Score     float64            `json:"score"`
}

// Layer2Components is the multi-source composite breakdown; bounded in [0,1].
type Layer2Components struct {
	Frequency float64 `json:"frequency"`
	Severity  float64 `json:"severity"`
	Burst     float64 `json:"burst"`
	Novelty   float64 `json:"novelty"`
	Consensus float64 `json:"consensus"`
	Mechanism float64 `json:"mechanism"`

	Score float64 `json:"score"`
}

// QuantumComponents bundles both composite layers for one pair
type QuantumComponents struct {
	Layer1 Layer1Components `json:"layer1"`
	Layer2 Layer2Components `json:"layer2"`
}

// AlertTier is the fixed threshold ladder over the final fusion score
type AlertTier string

const (
	TierCritical  AlertTier = "critical"
	TierHigh      AlertTier = "high"
	TierModerate  AlertTier = "moderate"
	TierWatchlist AlertTier = "watchlist"
	TierLow       AlertTier = "low"
	TierNone      AlertTier = "none"
)

// TierFor maps a clamped fusion score onto the alert ladder
func TierFor(score float64) AlertTier {
	switch {
	case score >= 0.95:
		return TierCritical
	case score >= 0.80:
		return TierHigh
	case score >= 0.65:
		return TierModerate
	case score >= 0.45:
		return TierWatchlist
	case score >= 0.25:
		return TierLow
	default:
		return TierNone
	}
}

// FusionResult is the terminal entity: one ranked, explainable judgment per
// drug-event pair. Created once per invocation, never mutated.
type FusionResult struct {
	ID    core.ResultID `json:"id"`
	Drug  string        `json:"drug"`
	Event string        `json:"event"`

	Table ContingencyTable `json:"table"`

	Disproportionality *DisproportionalityResult `json:"disproportionality,omitempty"`
	Bayesian           *BayesianResult           `json:"bayesian,omitempty"`
	Causality          *CausalityResult          `json:"causality,omitempty"`
	Temporal           *TemporalResult           `json:"temporal,omitempty"`
	Quantum            *QuantumComponents        `json:"quantum,omitempty"`

	CompositeScore float64   `json:"composite_score"`
	Tier           AlertTier `json:"tier"`

	// Rank and Percentile are set only when the pair was scored as part of
	// a batch. Rank is 1-based; zero means unranked.
	Rank       int     `json:"rank,omitempty"`
	Percentile float64 `json:"percentile,omitempty"`

	// Error marks a per-pair scoring failure; the rest of the batch is
	// unaffected. A result carries either a full score or this marker,
	// never a silently wrong number.
	Error string `json:"error,omitempty"`

	ScoredAt core.Timestamp `json:"scored_at"`
}

// Failed reports whether this result is an error marker
func (r FusionResult) Failed() bool { return r.Error != "" }
