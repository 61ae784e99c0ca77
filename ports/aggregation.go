package ports

import (
	"context"

	"govigil/domain/signal"
)

// CaseAggregationPort is the consumed contract with the ingestion/storage
// subsystem: it supplies aggregated pair inputs and knows nothing of how
// they are scored. The engine never fetches or parses raw case records.
type CaseAggregationPort interface {
	// AggregatedPairs returns every drug-event pair eligible for scoring,
	// each with its contingency table and whatever optional clinical and
	// temporal context the upstream system could assemble.
	AggregatedPairs(ctx context.Context) ([]signal.PairInput, error)
}

// ConfigResolverPort is the consumed contract with the hierarchical
// configuration store. Override merging happens upstream; the engine
// receives one resolved, flat value object per invocation.
type ConfigResolverPort interface {
	ResolveScoringConfig(ctx context.Context, organization, user string) (signal.ScoringConfig, error)
}
