package ports

import (
	"context"

	"govigil/app"
	"govigil/domain/core"
	"govigil/domain/signal"
)

// LedgerWriterPort provides append-only persistence of scored batches.
// This is the only way results are written - the engine itself never
// touches storage.
type LedgerWriterPort interface {
	StoreBatch(ctx context.Context, batch *app.BatchResult) error
}

// LedgerReaderPort provides read-only access to stored scoring runs
type LedgerReaderPort interface {
	GetBatch(ctx context.Context, batchID core.BatchID) (*app.BatchResult, error)
	ListBatches(ctx context.Context, limit, offset int) ([]core.BatchID, error)
	GetResultsByTier(ctx context.Context, batchID core.BatchID, tier signal.AlertTier) ([]signal.FusionResult, error)
}

// LedgerPort combines read and write access
type LedgerPort interface {
	LedgerWriterPort
	LedgerReaderPort
}
