package temporal

import (
	"govigil/domain/core"
	"govigil/domain/signal"
)

// Analyzer detects reporting spikes, trend direction, and novelty from a
// drug-event pair's reporting time series.
//
// All computations are anchored to the series' own last timestamp rather
// than the wall clock, so repeated runs over identical inputs produce
// identical results.
type Analyzer struct {
	cfg signal.TemporalConfig
}

// NewAnalyzer creates an analyzer with the given tuning
func NewAnalyzer(cfg signal.TemporalConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze runs spike detection, trend classification, and novelty scoring.
// Series shorter than the spike window simply report no spikes; series with
// fewer than two points cannot support any analysis and fail with
// InsufficientData.
func (a *Analyzer) Analyze(series signal.TimeSeriesData, labeledEvent bool) (*signal.TemporalResult, error) {
	if series.Len() < 2 {
		return nil, core.NewInsufficientDataError("temporal", "at least 2 points required")
	}

	result := &signal.TemporalResult{
		Spikes:  a.detectSpikes(series),
		Novelty: a.noveltyScore(series, labeledEvent),
	}
	a.classifyTrend(series, result)
	return result, nil
}
