package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
	"glossa/internal/domain/services"
	"glossa/internal/httputil"
	"glossa/internal/session"
)

// EvaluationHandler runs the final-evaluation aggregation for a finished
// conversation.
type EvaluationHandler struct {
	evalService services.EvaluationService
	registry    *session.Registry
	logger      *slog.Logger
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(evalService services.EvaluationService, registry *session.Registry, logger *slog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evalService: evalService,
		registry:    registry,
		logger:      logger,
	}
}

// finalEvaluationRequest is the client-supplied conversation to score.
// Duration is in milliseconds, matching the browser's clock arithmetic.
type finalEvaluationRequest struct {
	Conversation []models.TranscriptTurn `json:"conversation"`
	Duration     float64                 `json:"duration"`
	SessionID    string                  `json:"session_id,omitempty"`
}

// evaluationResponse is the fixed envelope of the evaluation endpoints.
// On upstream failure Success is false and Evaluation still carries a
// fully populated fallback so display logic never sees a hole.
type evaluationResponse struct {
	Success    bool                    `json:"success"`
	Evaluation *models.FinalEvaluation `json:"evaluation,omitempty"`
	Error      string                  `json:"error,omitempty"`
}

// FinalEvaluation scores a client-supplied transcript.
// POST /finalEvaluation
func (h *EvaluationHandler) FinalEvaluation(w http.ResponseWriter, r *http.Request) {
	var req finalEvaluationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, evaluationResponse{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	if len(req.Conversation) == 0 {
		httputil.RespondJSON(w, http.StatusBadRequest, evaluationResponse{
			Success: false,
			Error:   "conversation is required and must not be empty",
		})
		return
	}

	// Observations ride along when the caller names a live session.
	var observations []models.EvaluationToolObservation
	var sess *session.Session
	if req.SessionID != "" {
		if found, err := h.registry.Get(req.SessionID); err == nil {
			sess = found
			observations = sess.Observations()
		}
	}

	duration := time.Duration(req.Duration) * time.Millisecond
	evaluation, err := h.evalService.Aggregate(r.Context(), req.Conversation, duration, observations)
	respondEvaluation(w, h.logger, sess, evaluation, err)
}

// respondEvaluation maps the aggregator outcome onto the fixed response
// envelope, storing the report on the session when one is attached.
func respondEvaluation(w http.ResponseWriter, logger *slog.Logger, sess *session.Session, evaluation *models.FinalEvaluation, err error) {
	if err == nil {
		if sess != nil {
			sess.SetReport(evaluation, "")
		}
		httputil.RespondJSON(w, http.StatusOK, evaluationResponse{
			Success:    true,
			Evaluation: evaluation,
		})
		return
	}

	var emptyErr *domain.EmptyTranscriptError
	if errors.As(err, &emptyErr) {
		httputil.RespondJSON(w, http.StatusBadRequest, evaluationResponse{
			Success: false,
			Error:   emptyErr.Error(),
		})
		return
	}

	var callErr *domain.UpstreamCallError
	var schemaErr *domain.UpstreamSchemaError
	if errors.As(err, &callErr) || errors.As(err, &schemaErr) {
		// Upstream failures still yield a renderable report.
		logger.Error("final evaluation failed upstream", "error", err)
		fallback := models.FallbackEvaluation()
		if sess != nil {
			sess.SetReport(fallback, err.Error())
		}
		httputil.RespondJSON(w, http.StatusOK, evaluationResponse{
			Success:    false,
			Evaluation: fallback,
			Error:      err.Error(),
		})
		return
	}

	logger.Error("final evaluation failed", "error", err)
	httputil.RespondJSON(w, http.StatusInternalServerError, evaluationResponse{
		Success: false,
		Error:   "internal server error",
	})
}
