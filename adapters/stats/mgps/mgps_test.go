package mgps

import (
	"math"
	"testing"

	"govigil/domain/signal"
)

func defaultEstimator() *Estimator {
	return NewEstimator(signal.DefaultScoringConfig().Bayes)
}

func TestFitPrior_SingleTableFallsBackToDefault(t *testing.T) {
	prior := defaultEstimator().FitPrior([]signal.ContingencyTable{
		{A: 10, B: 90, C: 10, D: 890},
	})

	if !prior.LowConfidence {
		t.Error("one usable ratio cannot support a moment fit; expected low-confidence fallback")
	}
	if prior.Shape != 2.0 || prior.Rate != 4.0 {
		t.Errorf("fallback prior = Gamma(%.2f, %.2f), want Gamma(2, 4)", prior.Shape, prior.Rate)
	}
}

func TestFitPrior_MomentMatch(t *testing.T) {
	// Tables chosen so observed/expected ratios are spread out; the fitted
	// Gamma must reproduce the sample moments: shape = m^2/v, rate = m/v.
	tables := []signal.ContingencyTable{
		{A: 10, B: 90, C: 10, D: 890},    // E=2,   ratio 5
		{A: 4, B: 996, C: 40, D: 8960},   // E=4.4, ratio ~0.91
		{A: 30, B: 970, C: 70, D: 8930},  // E=10,  ratio 3
		{A: 8, B: 1992, C: 92, D: 97908}, // E=2,   ratio 4
	}

	prior := defaultEstimator().FitPrior(tables)
	if prior.LowConfidence {
		t.Fatal("four usable ratios should support a moment fit")
	}
	if prior.PairsFitted != 4 {
		t.Fatalf("PairsFitted = %d, want 4", prior.PairsFitted)
	}

	ratios := make([]float64, len(tables))
	var mean float64
	for i, table := range tables {
		ratios[i] = float64(table.A) / table.Expected()
		mean += ratios[i]
	}
	mean /= float64(len(ratios))
	// Population variance, matching the moment estimator's library call.
	var variance float64
	for _, r := range ratios {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(ratios))

	if math.Abs(prior.Shape-mean*mean/variance) > 1e-9 {
		t.Errorf("shape = %.6f, want %.6f", prior.Shape, mean*mean/variance)
	}
	if math.Abs(prior.Rate-mean/variance) > 1e-9 {
		t.Errorf("rate = %.6f, want %.6f", prior.Rate, mean/variance)
	}
	if math.Abs(prior.Mean()-mean) > 1e-9 {
		t.Errorf("prior mean = %.6f, want sample mean %.6f", prior.Mean(), mean)
	}
}

func TestScore_PosteriorClosedForm(t *testing.T) {
	// Gamma(2,4) prior, a=10, E=2: posterior is Gamma(12, 6) and
	// EBGM = exp(digamma(12) - ln 6) ~ 1.917.
	prior := signal.ShrinkagePrior{Shape: 2, Rate: 4}
	table := signal.ContingencyTable{A: 10, B: 90, C: 10, D: 890}

	result, err := defaultEstimator().Score(table, prior)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	if math.Abs(result.EBGM-1.917) > 0.01 {
		t.Errorf("EBGM = %.4f, want ~1.917", result.EBGM)
	}
	if !(result.EB05 < result.EBGM && result.EBGM < result.EB95) {
		t.Errorf("quantiles out of order: EB05=%.4f EBGM=%.4f EB95=%.4f", result.EB05, result.EBGM, result.EB95)
	}
	if result.RawP <= 0 || result.RawP >= 1 {
		t.Errorf("raw p = %.6f, want a probability in (0,1)", result.RawP)
	}
	// Posterior mass below 1 should be small for this table.
	if result.RawP > 0.05 {
		t.Errorf("raw p = %.4f, want < 0.05 for a 5x observed/expected ratio", result.RawP)
	}
}

func TestScore_ShrinksTowardPrior(t *testing.T) {
	// The shrunk point estimate must land between the prior mean and the
	// raw observed/expected ratio.
	prior := signal.ShrinkagePrior{Shape: 2, Rate: 4}
	table := signal.ContingencyTable{A: 10, B: 90, C: 10, D: 890}

	result, err := defaultEstimator().Score(table, prior)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	raw := float64(table.A) / table.Expected()
	if !(prior.Mean() < result.EBGM && result.EBGM < raw) {
		t.Errorf("EBGM = %.4f not between prior mean %.4f and raw ratio %.4f", result.EBGM, prior.Mean(), raw)
	}
}

func TestScore_PropagatesLowConfidence(t *testing.T) {
	prior := signal.ShrinkagePrior{Shape: 2, Rate: 4, LowConfidence: true}
	result, err := defaultEstimator().Score(signal.ContingencyTable{A: 5, B: 95, C: 50, D: 850}, prior)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !result.LowConfidence {
		t.Error("low-confidence prior must mark the posterior result")
	}
}

func TestBenjaminiHochberg_AdjustedValues(t *testing.T) {
	raw := []float64{0.01, 0.04, 0.03, 0.20}
	adjusted := BenjaminiHochberg(raw)

	want := []float64{0.04, 0.04 * 4.0 / 3.0, 0.04 * 4.0 / 3.0, 0.20}
	for i := range want {
		if math.Abs(adjusted[i]-want[i]) > 1e-12 {
			t.Errorf("adjusted[%d] = %.8f, want %.8f", i, adjusted[i], want[i])
		}
	}
}

func TestBenjaminiHochberg_MatchesStepUpRejections(t *testing.T) {
	// Thresholding the adjusted values must reject exactly the pairs the
	// classical step-up procedure rejects.
	raw := []float64{0.01, 0.04, 0.03, 0.20, 0.001, 0.30, 0.012}
	q := 0.05
	adjusted := BenjaminiHochberg(raw)

	stepUp := stepUpRejections(raw, q)
	for i := range raw {
		if (adjusted[i] <= q) != stepUp[i] {
			t.Errorf("pair %d: adjusted %.4f vs q=%.2f disagrees with step-up rejection %v", i, adjusted[i], q, stepUp[i])
		}
	}
}

func TestBenjaminiHochberg_Empty(t *testing.T) {
	if got := BenjaminiHochberg(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestAdjustBatch_SkipsFailedPairs(t *testing.T) {
	results := []*signal.BayesianResult{
		{EB05: 3.0, RawP: 0.001},
		nil,
		{EB05: 0.5, RawP: 0.80},
	}

	defaultEstimator().AdjustBatch(results)

	if !results[0].Signal {
		t.Errorf("EB05=3.0 with adjusted p %.4f should flag", results[0].AdjustedP)
	}
	if results[2].Signal {
		t.Error("EB05=0.5 must not flag regardless of multiplicity")
	}
	if results[2].AdjustedP < results[2].RawP {
		t.Errorf("adjustment lowered a p-value: %.4f -> %.4f", results[2].RawP, results[2].AdjustedP)
	}
}

// stepUpRejections implements the textbook procedure directly: find the
// largest k with p(k) <= k*q/m and reject everything ranked at or below it.
func stepUpRejections(raw []float64, q float64) []bool {
	m := len(raw)
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			if raw[order[j]] < raw[order[i]] {
				order[i], order[j] = order[j], order[i]
			}
		}
	}

	largest := -1
	for k := m - 1; k >= 0; k-- {
		if raw[order[k]] <= float64(k+1)*q/float64(m) {
			largest = k
			break
		}
	}

	rejected := make([]bool, m)
	for k := 0; k <= largest; k++ {
		rejected[order[k]] = true
	}
	return rejected
}
