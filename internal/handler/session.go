package handler

import (
	"log/slog"
	"net/http"

	"glossa/internal/domain/models"
	"glossa/internal/domain/services"
	"glossa/internal/httputil"
	"glossa/internal/realtime"
	"glossa/internal/session"
)

// SessionHandler exposes session status and the server-side stop path:
// stop rebuilds the transcript from the accumulated event log and runs
// the aggregator over it.
type SessionHandler struct {
	registry    *session.Registry
	evalService services.EvaluationService
	logger      *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(registry *session.Registry, evalService services.EvaluationService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		registry:    registry,
		evalService: evalService,
		logger:      logger,
	}
}

// sessionView is the status payload for one session.
type sessionView struct {
	SessionID       string                             `json:"session_id"`
	Status          session.Status                     `json:"status"`
	Language        string                             `json:"language"`
	DurationMinutes int                                `json:"duration_minutes"`
	Stats           session.Stats                      `json:"stats"`
	Observations    []models.EvaluationToolObservation `json:"observations"`
	Report          *models.FinalEvaluation            `json:"report,omitempty"`
	ReportError     string                             `json:"report_error,omitempty"`
}

// Get returns the live view of one session.
// GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	sess, err := h.registry.Get(id)
	if err != nil {
		handleError(w, err)
		return
	}

	report, reportErr, _ := sess.Report()
	httputil.RespondJSON(w, http.StatusOK, sessionView{
		SessionID:       sess.ID,
		Status:          sess.Status(),
		Language:        sess.Language,
		DurationMinutes: sess.DurationMinutes,
		Stats:           sess.Snapshot(),
		Observations:    sess.Observations(),
		Report:          report,
		ReportError:     reportErr,
	})
}

// Stop ends a session and scores it from the server-side event log.
// POST /api/sessions/{id}/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Session ID")
	if !ok {
		return
	}

	sess, err := h.registry.Get(id)
	if err != nil {
		handleError(w, err)
		return
	}

	duration := sess.Stop()
	transcript := realtime.BuildTranscript(sess.Events())

	h.logger.Info("session stopped",
		"session_id", sess.ID,
		"turns", len(transcript),
		"duration_s", int(duration.Seconds()),
	)

	evaluation, err := h.evalService.Aggregate(r.Context(), transcript, duration, sess.Observations())
	respondEvaluation(w, h.logger, sess, evaluation, err)
}
