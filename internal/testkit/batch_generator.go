package testkit

import (
	"fmt"
	"math/rand"
	"time"

	"govigil/domain/signal"
)

// BatchGenerator produces deterministic synthetic drug-event batches for
// tests and benchmarks. A fixed seed always yields the same batch.
type BatchGenerator struct {
	rng *rand.Rand
}

// NewBatchGenerator creates a generator with the given seed
func NewBatchGenerator(seed int64) *BatchGenerator {
	return &BatchGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Pair builds one synthetic pair with a plausible contingency table
func (g *BatchGenerator) Pair(i int) signal.PairInput {
	a := int64(g.rng.Intn(200) + 1)
	b := int64(g.rng.Intn(5000) + 100)
	c := int64(g.rng.Intn(1000) + 10)
	d := int64(g.rng.Intn(100000) + 1000)

	return signal.PairInput{
		Drug:  fmt.Sprintf("drug-%03d", i),
		Event: fmt.Sprintf("event-%03d", i),
		Table: signal.ContingencyTable{A: a, B: b, C: c, D: d},
		Seriousness: signal.SeriousnessProfile{
			Hospitalization: a / 4,
			Death:           a / 20,
		},
		SourcesCorroborating: g.rng.Intn(4),
		SourcesQueried:       4,
		MechanismScore:       g.rng.Float64(),
		MostRecentReport:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -g.rng.Intn(365)),
	}
}

// Batch builds n synthetic pairs
func (g *BatchGenerator) Batch(n int) []signal.PairInput {
	pairs := make([]signal.PairInput, n)
	for i := range pairs {
		pairs[i] = g.Pair(i)
	}
	return pairs
}

// WeeklySeries builds a weekly time series of length n. The last spikeWeeks
// buckets are inflated by spikeFactor to exercise spike detection.
func (g *BatchGenerator) WeeklySeries(start time.Time, n int, baseRate float64, spikeWeeks int, spikeFactor float64) signal.TimeSeriesData {
	points := make([]signal.SeriesPoint, n)
	for i := range points {
		rate := baseRate
		if spikeWeeks > 0 && i >= n-spikeWeeks {
			rate *= spikeFactor
		}
		count := int64(rate + g.rng.Float64()*baseRate*0.2)
		points[i] = signal.SeriesPoint{
			Timestamp: start.AddDate(0, 0, 7*i),
			Count:     count,
		}
	}
	return signal.TimeSeriesData{Points: points}
}

// Onset returns a pointer to an onset-day value, for ClinicalFeatures
func Onset(days int) *int {
	return &days
}
