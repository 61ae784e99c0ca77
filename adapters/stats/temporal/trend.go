package temporal

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"govigil/domain/signal"
)

// classifyTrend fits a least-squares line to log(count+1) over the most
// recent trend window and classifies the direction by the slope's
// significance. A significant slope also yields the doubling (or halving)
// period ln(2)/|slope| in series time units.
func (a *Analyzer) classifyTrend(series signal.TimeSeriesData, result *signal.TemporalResult) {
	counts := series.Counts()
	if len(counts) > a.cfg.TrendWindow {
		counts = counts[len(counts)-a.cfg.TrendWindow:]
	}

	n := len(counts)
	if n < 2 {
		result.Trend = signal.TrendStable
		return
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, c := range counts {
		xs[i] = float64(i)
		ys[i] = math.Log(c + 1)
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	result.Slope = slope
	result.TrendComputed = true
	result.Trend = signal.TrendStable

	if n < 3 {
		// No degrees of freedom for a slope test.
		return
	}

	p := slopePValue(xs, ys, slope, n)
	if p >= a.cfg.TrendAlpha || slope == 0 {
		return
	}

	if slope > 0 {
		result.Trend = signal.TrendIncreasing
	} else {
		result.Trend = signal.TrendDecreasing
	}
	result.DoublingPeriods = math.Ln2 / math.Abs(slope)
}

// slopePValue is the two-sided t-test p-value for a regression slope
func slopePValue(xs, ys []float64, slope float64, n int) float64 {
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	var sse, sxx float64
	meanX := stat.Mean(xs, nil)
	for i := range xs {
		resid := ys[i] - (alpha + beta*xs[i])
		sse += resid * resid
		dx := xs[i] - meanX
		sxx += dx * dx
	}
	if sxx == 0 {
		return 1.0
	}

	df := float64(n - 2)
	mse := sse / df
	se := math.Sqrt(mse / sxx)
	if se == 0 {
		// Perfect fit: any nonzero slope is maximally significant.
		if slope != 0 {
			return 0.0
		}
		return 1.0
	}

	t := math.Abs(slope / se)
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(t))
}
