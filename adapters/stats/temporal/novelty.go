package temporal

import (
	"math"

	"govigil/domain/signal"
)

// noveltyScore combines three bounded terms into [0,1]:
//
//   - recency: exponential decay from the first-ever report date, with a
//     shorter half-life for already-labeled effects (the emerging window)
//   - volume: inverse-log penalty on cumulative report count
//   - growth: reports per period, capped at 1.0
//
// The weights come from configuration; the functional form is fixed.
func (a *Analyzer) noveltyScore(series signal.TimeSeriesData, labeledEvent bool) float64 {
	first, ok := series.First()
	if !ok {
		return 0
	}
	last, _ := series.Last()

	halfLife := a.cfg.NoveltyHalfLifeDays
	if labeledEvent {
		halfLife = a.cfg.NoveltyHalfLifeLabeledDays
	}

	ageDays := last.Timestamp.Sub(first.Timestamp).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	recency := math.Exp(-math.Ln2 * ageDays / halfLife)

	total := float64(series.Total())
	volume := 1.0 / (1.0 + math.Log10(1.0+total))

	growth := total / float64(series.Len())
	if growth > 1.0 {
		growth = 1.0
	}

	novelty := a.cfg.NoveltyRecencyWeight*recency +
		a.cfg.NoveltyVolumeWeight*volume +
		a.cfg.NoveltyGrowthWeight*growth

	return clamp01(novelty)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
