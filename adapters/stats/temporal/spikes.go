package temporal

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"govigil/domain/signal"
)

// detectSpikes flags every point whose count sits far above its rolling
// baseline. The z-score uses a Poisson floor on the baseline variance so a
// quiet window cannot manufacture infinite significance.
func (a *Analyzer) detectSpikes(series signal.TimeSeriesData) []signal.Spike {
	window := a.cfg.SpikeWindow
	if series.Len() <= window {
		// Not enough rolling history; report no spikes rather than fail.
		return nil
	}

	counts := series.Counts()
	var spikes []signal.Spike

	for i := window; i < len(counts); i++ {
		baseline := counts[i-window : i]

		mean, err := stats.Mean(baseline)
		if err != nil {
			continue
		}
		sampleVar, err := stats.Variance(baseline)
		if err != nil {
			continue
		}

		// Under the Poisson approximation variance is at least the mean;
		// the 0.5 floor keeps an all-zero baseline finite.
		variance := math.Max(math.Max(mean, sampleVar), 0.5)

		observed := counts[i]
		z := (observed - mean) / math.Sqrt(variance)
		if z < a.cfg.SpikeZThreshold {
			continue
		}

		fold := observed / math.Max(mean, 0.5)
		spikes = append(spikes, signal.Spike{
			Timestamp:    series.Points[i].Timestamp,
			Observed:     series.Points[i].Count,
			FoldIncrease: fold,
			ZScore:       z,
			PValue:       1 - distuv.UnitNormal.CDF(z),
		})
	}
	return spikes
}
