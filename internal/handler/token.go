package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"glossa/internal/config"
	"glossa/internal/domain/services"
	"glossa/internal/httputil"
	"glossa/internal/session"
)

// TokenHandler mints ephemeral realtime credentials and registers the
// session they belong to.
type TokenHandler struct {
	tokenService services.TokenService
	registry     *session.Registry
	cfg          *config.Config
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService services.TokenService, registry *session.Registry, cfg *config.Config, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		registry:     registry,
		cfg:          cfg,
		logger:       logger,
	}
}

// Mint negotiates an ephemeral credential for a new session.
// GET /token?language=<l>&duration=<minutes>
//
// The session cannot go active until this completes; a failed mint tears
// the just-created session down again.
func (h *TokenHandler) Mint(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("language")
	if language == "" {
		language = h.cfg.DefaultLanguage
	}

	duration := h.cfg.DefaultDurationMinutes
	if raw := r.URL.Query().Get("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
			return
		}
		duration = parsed
	}

	sess := h.registry.Create(language, duration)

	grant, err := h.tokenService.Mint(r.Context(), sess.ID, language, duration)
	if err != nil {
		h.registry.Delete(sess.ID)
		h.logger.Error("token negotiation failed", "session_id", sess.ID, "error", err)
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, grant)
}
