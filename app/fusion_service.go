package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"govigil/adapters/stats/causality"
	"govigil/adapters/stats/disprop"
	"govigil/adapters/stats/mgps"
	"govigil/adapters/stats/quantum"
	"govigil/adapters/stats/temporal"
	"govigil/domain/core"
	"govigil/domain/signal"
	"govigil/internal"
)

// FusionService orchestrates the full scoring pipeline for a batch of
// drug-event pairs. Two states per batch: Scoring (prior fit barrier, then
// embarrassingly parallel per-pair work) and Ranking (a single barrier once
// every composite score is known).
type FusionService struct {
	cfg signal.ScoringConfig
	log *internal.Logger

	disprop   *disprop.Calculator
	estimator *mgps.Estimator
	assessor  *causality.Assessor
	analyzer  *temporal.Analyzer
	scorer    *quantum.Scorer
}

// NewFusionService validates the configuration and wires the component
// engines. A configuration failure here aborts before any scoring work.
func NewFusionService(cfg signal.ScoringConfig) (*FusionService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &FusionService{
		cfg:       cfg,
		log:       internal.DefaultLogger,
		disprop:   disprop.NewCalculator(cfg.Disprop),
		estimator: mgps.NewEstimator(cfg.Bayes),
		assessor:  causality.NewAssessor(),
		analyzer:  temporal.NewAnalyzer(cfg.Temporal),
		scorer:    quantum.NewScorer(cfg.Layer1, cfg.Layer2),
	}, nil
}

// BatchRequest is one scoring invocation over a set of pairs.
type BatchRequest struct {
	BatchID core.BatchID       `json:"batch_id,omitempty"`
	Pairs   []signal.PairInput `json:"pairs"`

	// AsOf anchors recency computations. When zero it is derived from the
	// latest report timestamp in the batch, keeping repeated runs over the
	// same inputs bit-identical.
	AsOf time.Time `json:"as_of,omitempty"`
}

// BatchResult is the terminal output of one batch invocation.
type BatchResult struct {
	BatchID     core.BatchID          `json:"batch_id"`
	Prior       signal.ShrinkagePrior `json:"prior"`
	Results     []signal.FusionResult `json:"results"`
	Fingerprint core.BatchFingerprint `json:"fingerprint"`
	RuntimeMs   int64                 `json:"runtime_ms"`
}

// ScoreBatch scores every pair and ranks the batch. Per-pair data problems
// yield error-marked results and never abort the rest of the batch.
func (s *FusionService) ScoreBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	start := time.Now()

	if len(req.Pairs) == 0 {
		return nil, core.ErrEmptyBatch
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = core.BatchID(core.NewID())
	}
	asOf := resolveAsOf(req)
	scoredAt := core.Now()

	// Phase 1 barrier: the shrinkage prior is a reduction over the whole
	// batch and must exist before any posterior is computed.
	tables := make([]signal.ContingencyTable, 0, len(req.Pairs))
	for _, p := range req.Pairs {
		if p.Validate() == nil {
			tables = append(tables, p.Table)
		}
	}
	prior := s.estimator.FitPrior(tables)
	s.log.Debug("batch %s: prior fitted shape=%.4f rate=%.4f pairs=%d low_confidence=%v",
		batchID, prior.Shape, prior.Rate, prior.PairsFitted, prior.LowConfidence)

	// Phase 2: per-pair scoring, independent value objects, bounded fan-out.
	results := make([]signal.FusionResult, len(req.Pairs))
	bayes := make([]*signal.BayesianResult, len(req.Pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism())
	for i := range req.Pairs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], bayes[i] = s.scorePair(req.Pairs[i], prior, asOf, scoredAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %s: scoring interrupted: %w", batchID, err)
	}

	// Multiplicity barrier: BH adjustment needs every raw significance.
	s.estimator.AdjustBatch(bayes)

	// Composite scores depend on the adjusted Bayesian flags, so they are
	// finalized after the barrier.
	for i := range results {
		if results[i].Failed() {
			continue
		}
		s.finalizeComposite(&results[i])
	}

	rankBatch(results)

	return &BatchResult{
		BatchID:     batchID,
		Prior:       prior,
		Results:     results,
		Fingerprint: fingerprint(results),
		RuntimeMs:   time.Since(start).Milliseconds(),
	}, nil
}

// ScoreOne scores a single pair outside any batch: the ranking barrier is
// skipped and rank/percentile stay absent. The prior falls back to the
// documented default, flagged low confidence.
func (s *FusionService) ScoreOne(ctx context.Context, pair signal.PairInput) (signal.FusionResult, error) {
	if err := ctx.Err(); err != nil {
		return signal.FusionResult{}, err
	}

	prior := s.estimator.FitPrior([]signal.ContingencyTable{pair.Table})
	asOf := resolveAsOf(BatchRequest{Pairs: []signal.PairInput{pair}})

	result, bayesResult := s.scorePair(pair, prior, asOf, core.Now())
	if result.Failed() {
		return result, nil
	}

	s.estimator.AdjustBatch([]*signal.BayesianResult{bayesResult})
	s.finalizeComposite(&result)
	return result, nil
}

// scorePair runs every component for one pair. Optional inputs only
// suppress their dependent sub-results; genuine numeric failures turn the
// whole pair into an error marker.
func (s *FusionService) scorePair(pair signal.PairInput, prior signal.ShrinkagePrior, asOf time.Time, scoredAt core.Timestamp) (signal.FusionResult, *signal.BayesianResult) {
	result := signal.FusionResult{
		ID:       core.ResultID(core.NewID()),
		Drug:     pair.Drug,
		Event:    pair.Event,
		Table:    pair.Table,
		ScoredAt: scoredAt,
	}

	if err := pair.Validate(); err != nil {
		result.Error = err.Error()
		return result, nil
	}

	dispropResult, err := s.disprop.Compute(pair.Table)
	if err != nil && !core.IsInsufficientData(err) {
		result.Error = core.NewOverflowError(pair.Drug, pair.Event, err).Error()
		return result, nil
	}
	result.Disproportionality = dispropResult

	bayesResult, err := s.estimator.Score(pair.Table, prior)
	if err != nil && !core.IsInsufficientData(err) {
		result.Error = core.NewOverflowError(pair.Drug, pair.Event, err).Error()
		return result, nil
	}
	result.Bayesian = bayesResult

	if pair.Clinical != nil {
		result.Causality = s.assessor.Assess(*pair.Clinical)
	}

	if pair.Series != nil {
		temporalResult, err := s.analyzer.Analyze(*pair.Series, pair.LabeledEvent)
		if err == nil {
			result.Temporal = temporalResult
		}
		// InsufficientData leaves the sub-result absent rather than wrong.
	}

	result.Quantum = &signal.QuantumComponents{
		Layer1: s.scorer.ScoreLayer1(pair, asOf),
		Layer2: s.scorer.ScoreLayer2(pair, result.Temporal),
	}

	return result, bayesResult
}

func (s *FusionService) parallelism() int {
	if s.cfg.MaxParallelism > 0 {
		return s.cfg.MaxParallelism
	}
	return runtime.NumCPU()
}

// resolveAsOf derives a deterministic reference time from the batch itself
// when the caller did not provide one.
func resolveAsOf(req BatchRequest) time.Time {
	if !req.AsOf.IsZero() {
		return req.AsOf
	}
	var latest time.Time
	for _, p := range req.Pairs {
		if p.MostRecentReport.After(latest) {
			latest = p.MostRecentReport
		}
		if p.Series != nil {
			if last, ok := p.Series.Last(); ok && last.Timestamp.After(latest) {
				latest = last.Timestamp
			}
		}
	}
	return latest
}
