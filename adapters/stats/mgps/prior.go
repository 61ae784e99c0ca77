package mgps

import (
	"github.com/montanaflynn/stats"

	"govigil/domain/signal"
	"govigil/internal"
)

// Estimator implements the multi-item Gamma-Poisson shrinker. The prior is
// fitted once per batch (phase 1) and then shared read-only by every
// per-pair posterior computation (phase 2).
type Estimator struct {
	cfg signal.BayesConfig
	log *internal.Logger
}

// NewEstimator creates an estimator with the given tuning
func NewEstimator(cfg signal.BayesConfig) *Estimator {
	return &Estimator{cfg: cfg, log: internal.DefaultLogger}
}

// FitPrior estimates Gamma shape/rate by method of moments over the
// observed/expected ratios of the whole batch. Pairs with zero expected
// count are excluded from fitting but still scored against the returned
// prior. Batches that cannot support a moment fit fall back to the
// documented default prior and carry a low-confidence flag.
func (e *Estimator) FitPrior(tables []signal.ContingencyTable) signal.ShrinkagePrior {
	ratios := make([]float64, 0, len(tables))
	for _, t := range tables {
		expected := t.Expected()
		if expected <= 0 {
			continue
		}
		ratios = append(ratios, float64(t.A)/expected)
	}

	if len(ratios) < 2 {
		e.log.Warn("mgps: batch of %d usable pairs cannot fit a prior, using default (shape=%.1f rate=%.1f)",
			len(ratios), e.cfg.DefaultPriorShape, e.cfg.DefaultPriorRate)
		return e.defaultPrior(len(ratios))
	}

	mean, err := stats.Mean(ratios)
	if err != nil {
		return e.defaultPrior(len(ratios))
	}
	variance, err := stats.Variance(ratios)
	if err != nil {
		return e.defaultPrior(len(ratios))
	}
	if mean <= 0 || variance <= 0 {
		// Degenerate ratio distribution, e.g. every pair exactly at its
		// expected count.
		e.log.Warn("mgps: degenerate ratio moments (mean=%.4f var=%.4f), using default prior", mean, variance)
		return e.defaultPrior(len(ratios))
	}

	// Gamma(shape, rate): mean = shape/rate, variance = shape/rate^2.
	shape := mean * mean / variance
	rate := mean / variance

	return signal.ShrinkagePrior{
		Shape:       shape,
		Rate:        rate,
		PairsFitted: len(ratios),
	}
}

func (e *Estimator) defaultPrior(fitted int) signal.ShrinkagePrior {
	return signal.ShrinkagePrior{
		Shape:         e.cfg.DefaultPriorShape,
		Rate:          e.cfg.DefaultPriorRate,
		PairsFitted:   fitted,
		LowConfidence: true,
	}
}
