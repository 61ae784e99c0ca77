package mgps

import (
	"sort"
)

// BenjaminiHochberg returns the step-up adjusted p-values for the given raw
// p-values, preserving input order. Each adjusted value is the running
// minimum over higher-ranked pairs of p*(m/rank), so thresholding the
// adjusted values at q reproduces the classical step-up rejection set.
func BenjaminiHochberg(pValues []float64) []float64 {
	m := len(pValues)
	if m == 0 {
		return nil
	}

	// Rank by ascending p-value, remembering original positions.
	order := make([]int, m)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return pValues[order[i]] < pValues[order[j]]
	})

	adjusted := make([]float64, m)
	running := 1.0
	for i := m - 1; i >= 0; i-- {
		rank := i + 1
		q := pValues[order[i]] * float64(m) / float64(rank)
		if q < running {
			running = q
		}
		adjusted[order[i]] = running
	}
	return adjusted
}
