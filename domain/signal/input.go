package signal

import (
	"fmt"
	"time"

	"govigil/domain/core"
)

// SeriousnessProfile counts serious-outcome cases among the pair's reports.
// Regulatory seriousness criteria, each weighted by the layer-1 scorer.
type SeriousnessProfile struct {
	Death             int64 `json:"death"`
	LifeThreatening   int64 `json:"life_threatening"`
	Hospitalization   int64 `json:"hospitalization"`
	Disability        int64 `json:"disability"`
	CongenitalAnomaly int64 `json:"congenital_anomaly"`
}

// Total returns the number of serious cases across all criteria
func (p SeriousnessProfile) Total() int64 {
	return p.Death + p.LifeThreatening + p.Hospitalization + p.Disability + p.CongenitalAnomaly
}

// PairInput is everything the engine consumes for one drug-event pair. The
// contingency table is required; clinical features and the time series are
// optional and their absence only suppresses the dependent sub-results.
type PairInput struct {
	Drug  string           `json:"drug"`
	Event string           `json:"event"`
	Table ContingencyTable `json:"table"`

	Clinical *ClinicalFeatures `json:"clinical,omitempty"`
	Series   *TimeSeriesData   `json:"series,omitempty"`

	Seriousness SeriousnessProfile `json:"seriousness"`

	// MostRecentReport drives the layer-1 recency sub-score; zero value
	// means unknown and scores as stale.
	MostRecentReport time.Time `json:"most_recent_report,omitempty"`

	// Multi-source corroboration: how many of the queried independent
	// sources also report the pair.
	SourcesCorroborating int `json:"sources_corroborating"`
	SourcesQueried       int `json:"sources_queried"`

	// MechanismScore is an externally supplied plausibility in [0,1]
	// (e.g. from literature lookup); treated as opaque here.
	MechanismScore float64 `json:"mechanism_score"`

	// LabeledEvent marks the event as an already-labeled/known effect of
	// the drug, which narrows the novelty recency band.
	LabeledEvent bool `json:"labeled_event"`
}

// Validate checks structural invariants of the input pair
func (p PairInput) Validate() error {
	if p.Drug == "" || p.Event == "" {
		return fmt.Errorf("%w: drug and event names are required", core.ErrInvalidTable)
	}
	if _, err := NewContingencyTable(p.Table.A, p.Table.B, p.Table.C, p.Table.D); err != nil {
		return err
	}
	if p.SourcesCorroborating < 0 || p.SourcesQueried < 0 || p.SourcesCorroborating > p.SourcesQueried {
		return fmt.Errorf("%w: corroborating sources must be within queried sources", core.ErrInvalidTable)
	}
	if p.MechanismScore < 0 || p.MechanismScore > 1 {
		return fmt.Errorf("%w: mechanism score must be in [0,1]", core.ErrInvalidTable)
	}
	return nil
}

// Key is the canonical drug/event identifier used in fingerprints and tie
// breaking.
func (p PairInput) Key() string {
	return p.Drug + "\x1f" + p.Event
}
