package mgps

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	"govigil/domain/core"
	"govigil/domain/signal"
)

// Score computes the per-pair shrunk estimate against a fitted prior.
// The posterior of the relative-risk λ under a Poisson likelihood with a
// Gamma(shape, rate) prior is Gamma(shape+a, rate+E).
//
// EBGM is the geometric mean of the posterior, exp(E[ln λ]), obtained in
// closed form via the digamma function; EB05/EB95 come from the exact Gamma
// quantile, so no Monte-Carlo integration is needed and the result is
// reproducible by construction.
//
// The returned result carries only the raw significance value; the
// Benjamini-Hochberg adjustment is a batch-level barrier (see AdjustBatch).
func (e *Estimator) Score(table signal.ContingencyTable, prior signal.ShrinkagePrior) (*signal.BayesianResult, error) {
	if table.N() == 0 {
		return nil, core.NewInsufficientDataError("mgps", "contingency table total is zero")
	}

	expected := table.Expected()
	postShape := prior.Shape + float64(table.A)
	postRate := prior.Rate + expected
	if postShape <= 0 || postRate <= 0 {
		return nil, core.NewInsufficientDataError("mgps", "non-positive posterior parameters")
	}

	posterior := distuv.Gamma{Alpha: postShape, Beta: postRate}

	ebgm := math.Exp(mathext.Digamma(postShape) - math.Log(postRate))
	eb05 := posterior.Quantile(0.05)
	eb95 := posterior.Quantile(0.95)

	// One-sided evidence that the true relative risk is at most 1; small
	// values support EB05 > 1.
	rawP := posterior.CDF(1.0)

	if math.IsNaN(ebgm) || math.IsInf(ebgm, 0) || math.IsNaN(eb05) || math.IsNaN(eb95) {
		return nil, fmt.Errorf("%w: non-finite posterior (shape=%.4g rate=%.4g)", core.ErrNumericOverflow, postShape, postRate)
	}

	return &signal.BayesianResult{
		EBGM:          ebgm,
		EB05:          eb05,
		EB95:          eb95,
		RawP:          rawP,
		AdjustedP:     rawP,
		LowConfidence: prior.LowConfidence,
	}, nil
}

// AdjustBatch applies the Benjamini-Hochberg correction across all scored
// pairs of a batch and sets the final signal flags at the configured false
// discovery rate. Nil entries (failed pairs) are skipped. Must run after
// every pair has been scored.
func (e *Estimator) AdjustBatch(results []*signal.BayesianResult) {
	raw := make([]float64, 0, len(results))
	for _, r := range results {
		if r != nil {
			raw = append(raw, r.RawP)
		}
	}
	if len(raw) == 0 {
		return
	}

	adjusted := BenjaminiHochberg(raw)

	i := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		r.AdjustedP = adjusted[i]
		r.Signal = r.EB05 > e.cfg.SignalThreshold && r.AdjustedP < e.cfg.FDRTarget
		i++
	}
}
