package testkit

import (
	"testing"
	"time"
)

func TestBatchGenerator_Deterministic(t *testing.T) {
	a := NewBatchGenerator(42).Batch(20)
	b := NewBatchGenerator(42).Batch(20)

	for i := range a {
		if a[i].Table != b[i].Table || a[i].Drug != b[i].Drug {
			t.Fatalf("pair %d differs across identically seeded generators", i)
		}
	}
}

func TestBatchGenerator_ValidPairs(t *testing.T) {
	for i, pair := range NewBatchGenerator(1).Batch(50) {
		if err := pair.Validate(); err != nil {
			t.Errorf("generated pair %d invalid: %v", i, err)
		}
	}
}

func TestWeeklySeries_SpikeInflation(t *testing.T) {
	g := NewBatchGenerator(9)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := g.WeeklySeries(start, 20, 10, 3, 8)

	if series.Len() != 20 {
		t.Fatalf("series length = %d, want 20", series.Len())
	}

	// The inflated tail must sit well above the baseline.
	baselineMax := int64(0)
	for _, p := range series.Points[:17] {
		if p.Count > baselineMax {
			baselineMax = p.Count
		}
	}
	for _, p := range series.Points[17:] {
		if p.Count <= baselineMax {
			t.Errorf("spike bucket %v count %d not above baseline max %d", p.Timestamp, p.Count, baselineMax)
		}
	}
}
