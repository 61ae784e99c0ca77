package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"govigil/app"
	"govigil/domain/core"
	"govigil/domain/signal"
	"govigil/internal"
	apperrors "govigil/internal/errors"
	"govigil/ports"
)

// Server exposes the batch scoring operation over HTTP. The engine stays
// pure computation; this adapter only decodes inputs and encodes results.
type Server struct {
	router  chi.Router
	service *app.FusionService
	ledger  ports.LedgerPort // optional; nil disables persistence routes
	log     *internal.Logger
}

// NewServer wires the routes. A nil ledger simply disables the batch
// retrieval endpoints.
func NewServer(service *app.FusionService, ledger ports.LedgerPort) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		ledger:  ledger,
		log:     internal.DefaultLogger,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/score/batch", s.handleScoreBatch)
		r.Post("/score/one", s.handleScoreOne)
		if s.ledger != nil {
			r.Get("/batches", s.handleListBatches)
			r.Get("/batches/{batchID}", s.handleGetBatch)
			r.Get("/batches/{batchID}/tiers/{tier}", s.handleGetTier)
		}
	})
	return s
}

// Handler returns the underlying HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScoreBatch(w http.ResponseWriter, r *http.Request) {
	var req app.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid batch request: "+err.Error())
		return
	}

	batch, err := s.service.ScoreBatch(r.Context(), req)
	if err != nil {
		s.log.Error("batch scoring failed: %v", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	if s.ledger != nil {
		if err := s.ledger.StoreBatch(r.Context(), batch); err != nil {
			// Persistence is best-effort; the caller still gets the scores.
			s.log.Error("failed to persist batch %s: %v", batch.BatchID, err)
		}
	}

	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleScoreOne(w http.ResponseWriter, r *http.Request) {
	var pair signal.PairInput
	if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
		writeError(w, http.StatusBadRequest, "invalid pair input: "+err.Error())
		return
	}

	result, err := s.service.ScoreOne(r.Context(), pair)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	ids, err := s.ledger.ListBatches(r.Context(), 50, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"batches": ids})
}

func (s *Server) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := core.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	batch, err := s.ledger.GetBatch(r.Context(), batchID)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.GetCode(err) == apperrors.CodeNotFound {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleGetTier(w http.ResponseWriter, r *http.Request) {
	batchID, err := core.ParseBatchID(chi.URLParam(r, "batchID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tier := signal.AlertTier(chi.URLParam(r, "tier"))
	results, err := s.ledger.GetResultsByTier(r.Context(), batchID, tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"batch_id": batchID, "tier": tier, "results": results})
}

func statusFor(err error) int {
	switch {
	case core.IsConfigError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrEmptyBatch), core.IsInsufficientData(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
