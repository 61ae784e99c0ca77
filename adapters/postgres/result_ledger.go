package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"govigil/app"
	"govigil/domain/core"
	"govigil/domain/signal"
	"govigil/internal/errors"
	"govigil/ports"
)

// resultLedger implements ports.LedgerPort over Postgres. Batches are
// append-only: a scored batch is written once, immutably, and only read
// back afterwards.
type resultLedger struct {
	db *sqlx.DB
}

// NewResultLedger creates a ledger backed by the given connection
func NewResultLedger(db *sqlx.DB) ports.LedgerPort {
	return &resultLedger{db: db}
}

// Open connects to Postgres and verifies the connection
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, errors.LedgerError("failed to connect to postgres", err)
	}
	return db, nil
}

// Migrate creates the ledger tables when missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scoring_batches (
		batch_id    TEXT PRIMARY KEY,
		prior       JSONB NOT NULL,
		fingerprint TEXT NOT NULL,
		runtime_ms  BIGINT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS scoring_results (
		result_id       TEXT PRIMARY KEY,
		batch_id        TEXT NOT NULL REFERENCES scoring_batches(batch_id),
		drug            TEXT NOT NULL,
		event           TEXT NOT NULL,
		composite_score DOUBLE PRECISION NOT NULL,
		tier            TEXT NOT NULL,
		rank            INT NOT NULL,
		percentile      DOUBLE PRECISION NOT NULL,
		error_marker    TEXT NOT NULL DEFAULT '',
		payload         JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_scoring_results_batch ON scoring_results(batch_id);
	CREATE INDEX IF NOT EXISTS idx_scoring_results_tier ON scoring_results(batch_id, tier);`

	_, err := db.ExecContext(ctx, schema)
	if err != nil {
		return errors.LedgerError("failed to migrate ledger schema", err)
	}
	return nil
}

// StoreBatch writes the batch header and every per-pair result in one
// transaction.
func (l *resultLedger) StoreBatch(ctx context.Context, batch *app.BatchResult) error {
	priorJSON, err := json.Marshal(batch.Prior)
	if err != nil {
		return errors.LedgerError("failed to marshal prior", err)
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.LedgerError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scoring_batches (batch_id, prior, fingerprint, runtime_ms) VALUES ($1, $2, $3, $4)`,
		batch.BatchID, priorJSON, batch.Fingerprint, batch.RuntimeMs,
	)
	if err != nil {
		return errors.LedgerError(fmt.Sprintf("failed to insert batch %s", batch.BatchID), err)
	}

	for i := range batch.Results {
		r := &batch.Results[i]
		payload, err := json.Marshal(r)
		if err != nil {
			return errors.LedgerError(fmt.Sprintf("failed to marshal result %s", r.ID), err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO scoring_results
				(result_id, batch_id, drug, event, composite_score, tier, rank, percentile, error_marker, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			r.ID, batch.BatchID, r.Drug, r.Event, r.CompositeScore, r.Tier, r.Rank, r.Percentile, r.Error, payload,
		)
		if err != nil {
			return errors.LedgerError(fmt.Sprintf("failed to insert result %s", r.ID), err)
		}
	}

	return tx.Commit()
}

// GetBatch reads a stored batch with all its results, ranked order
func (l *resultLedger) GetBatch(ctx context.Context, batchID core.BatchID) (*app.BatchResult, error) {
	var header struct {
		BatchID     string `db:"batch_id"`
		Prior       []byte `db:"prior"`
		Fingerprint string `db:"fingerprint"`
		RuntimeMs   int64  `db:"runtime_ms"`
	}
	err := l.db.GetContext(ctx, &header,
		`SELECT batch_id, prior, fingerprint, runtime_ms FROM scoring_batches WHERE batch_id = $1`, batchID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("batch %s", batchID))
	}
	if err != nil {
		return nil, errors.LedgerError(fmt.Sprintf("failed to load batch %s", batchID), err)
	}

	batch := &app.BatchResult{
		BatchID:     core.BatchID(header.BatchID),
		Fingerprint: core.BatchFingerprint(header.Fingerprint),
		RuntimeMs:   header.RuntimeMs,
	}
	if err := json.Unmarshal(header.Prior, &batch.Prior); err != nil {
		return nil, errors.LedgerError("failed to unmarshal prior", err)
	}

	rows, err := l.db.QueryxContext(ctx,
		`SELECT payload FROM scoring_results WHERE batch_id = $1 ORDER BY rank = 0, rank, drug, event`, batchID)
	if err != nil {
		return nil, errors.LedgerError(fmt.Sprintf("failed to load results for batch %s", batchID), err)
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result signal.FusionResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, errors.LedgerError("failed to unmarshal result", err)
		}
		batch.Results = append(batch.Results, result)
	}
	return batch, rows.Err()
}

// ListBatches returns batch IDs newest first
func (l *resultLedger) ListBatches(ctx context.Context, limit, offset int) ([]core.BatchID, error) {
	if limit <= 0 {
		limit = 50
	}
	var ids []string
	err := l.db.SelectContext(ctx, &ids,
		`SELECT batch_id FROM scoring_batches ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, errors.LedgerError("failed to list batches", err)
	}
	out := make([]core.BatchID, len(ids))
	for i, id := range ids {
		out[i] = core.BatchID(id)
	}
	return out, nil
}

// GetResultsByTier returns a batch's results for one alert tier, ranked
func (l *resultLedger) GetResultsByTier(ctx context.Context, batchID core.BatchID, tier signal.AlertTier) ([]signal.FusionResult, error) {
	rows, err := l.db.QueryxContext(ctx,
		`SELECT payload FROM scoring_results WHERE batch_id = $1 AND tier = $2 ORDER BY rank`, batchID, tier)
	if err != nil {
		return nil, errors.LedgerError(fmt.Sprintf("failed to load tier %s for batch %s", tier, batchID), err)
	}
	defer rows.Close()

	var results []signal.FusionResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var result signal.FusionResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, errors.LedgerError("failed to unmarshal result", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
