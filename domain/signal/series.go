package signal

import (
	"fmt"
	"time"

	"govigil/domain/core"
)

// SeriesPoint is one reporting bucket: the number of reports observed in
// the period starting at Timestamp.
type SeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int64     `json:"count"`
}

// TimeSeriesData is an ordered sequence of reporting buckets at a fixed
// granularity (typically weekly). Timestamps must be strictly increasing.
type TimeSeriesData struct {
	Points []SeriesPoint `json:"points"`
}

// NewTimeSeriesData validates ordering and non-negative counts.
func NewTimeSeriesData(points []SeriesPoint) (TimeSeriesData, error) {
	for i, p := range points {
		if p.Count < 0 {
			return TimeSeriesData{}, fmt.Errorf("%w: negative count at index %d", core.ErrInvalidSeries, i)
		}
		if i > 0 && !points[i-1].Timestamp.Before(p.Timestamp) {
			return TimeSeriesData{}, fmt.Errorf("%w: timestamps not strictly increasing at index %d", core.ErrInvalidSeries, i)
		}
	}
	return TimeSeriesData{Points: points}, nil
}

// Len returns the number of buckets
func (s TimeSeriesData) Len() int { return len(s.Points) }

// IsEmpty reports whether the series has no buckets
func (s TimeSeriesData) IsEmpty() bool { return len(s.Points) == 0 }

// First returns the earliest bucket; ok is false for an empty series
func (s TimeSeriesData) First() (SeriesPoint, bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[0], true
}

// Last returns the latest bucket; ok is false for an empty series
func (s TimeSeriesData) Last() (SeriesPoint, bool) {
	if len(s.Points) == 0 {
		return SeriesPoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Counts returns the bucket counts as float64 for statistical routines
func (s TimeSeriesData) Counts() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = float64(p.Count)
	}
	return out
}

// Total returns the cumulative report count across all buckets
func (s TimeSeriesData) Total() int64 {
	var total int64
	for _, p := range s.Points {
		total += p.Count
	}
	return total
}
