package disprop

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"govigil/domain/core"
	"govigil/domain/signal"
)

// Calculator computes the classical disproportionality metrics (PRR, ROR,
// IC) from a single 2x2 contingency table.
type Calculator struct {
	cfg signal.DisproportionalityConfig
	z95 float64
}

// NewCalculator creates a calculator for the given thresholds
func NewCalculator(cfg signal.DisproportionalityConfig) *Calculator {
	return &Calculator{
		cfg: cfg,
		z95: distuv.UnitNormal.Quantile(0.975),
	}
}

// Compute evaluates all three metrics. A zero total count is an
// InsufficientData failure; zero cells are handled with a +0.5 continuity
// correction so every returned value is finite.
func (c *Calculator) Compute(table signal.ContingencyTable) (*signal.DisproportionalityResult, error) {
	if table.N() == 0 {
		return nil, core.NewInsufficientDataError("disproportionality", "contingency table total is zero")
	}

	a, b, cc, d := float64(table.A), float64(table.B), float64(table.C), float64(table.D)
	if table.A == 0 || table.B == 0 || table.C == 0 || table.D == 0 {
		// Haldane-Anscombe correction keeps ratios and logs defined.
		a += 0.5
		b += 0.5
		cc += 0.5
		d += 0.5
	}

	result := &signal.DisproportionalityResult{
		PRR: c.prr(a, b, cc, d, table.A),
		ROR: c.ror(a, b, cc, d, table.A),
		IC:  c.ic(table),
	}
	if !finiteEstimate(result.PRR) || !finiteEstimate(result.ROR) || !finiteEstimate(result.IC) {
		return nil, fmt.Errorf("%w: non-finite disproportionality estimate", core.ErrNumericOverflow)
	}
	return result, nil
}

// prr computes the proportional reporting ratio with a Wald interval on the
// log scale.
func (c *Calculator) prr(a, b, cc, d float64, rawA int64) signal.MetricEstimate {
	drugRate := a / (a + b)
	otherRate := cc / (cc + d)
	prr := drugRate / otherRate

	se := math.Sqrt(1/a - 1/(a+b) + 1/cc - 1/(cc+d))
	logPRR := math.Log(prr)
	lower := math.Exp(logPRR - c.z95*se)
	upper := math.Exp(logPRR + c.z95*se)

	return signal.MetricEstimate{
		Value:   prr,
		CILower: lower,
		CIUpper: upper,
		Signal:  prr >= c.cfg.PRRThreshold && rawA >= c.cfg.MinCount && lower > 1,
	}
}

// ror computes the reporting odds ratio with a Wald interval on the
// log-odds scale.
func (c *Calculator) ror(a, b, cc, d float64, rawA int64) signal.MetricEstimate {
	ror := (a * d) / (b * cc)

	se := math.Sqrt(1/a + 1/b + 1/cc + 1/d)
	logROR := math.Log(ror)
	lower := math.Exp(logROR - c.z95*se)
	upper := math.Exp(logROR + c.z95*se)

	return signal.MetricEstimate{
		Value:   ror,
		CILower: lower,
		CIUpper: upper,
		Signal:  ror > 1 && lower > 1 && rawA >= c.cfg.MinCount,
	}
}

// ic computes the information component. The 0.5 smoothing terms keep the
// log defined for zero observed or expected counts, so the raw cells are
// used here rather than the corrected ones.
func (c *Calculator) ic(table signal.ContingencyTable) signal.MetricEstimate {
	a := float64(table.A)
	e := table.Expected()

	ic := math.Log2((a + 0.5) / (e + 0.5))
	sigma := math.Sqrt(1/(a+0.5)+1/(e+0.5)) / math.Ln2

	lower := ic - 2*sigma // IC025
	upper := ic + 2*sigma

	return signal.MetricEstimate{
		Value:   ic,
		CILower: lower,
		CIUpper: upper,
		Signal:  lower > 0,
	}
}

func finiteEstimate(m signal.MetricEstimate) bool {
	return !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0) &&
		!math.IsNaN(m.CILower) && !math.IsInf(m.CILower, 0) &&
		!math.IsNaN(m.CIUpper) && !math.IsInf(m.CIUpper, 0)
}
