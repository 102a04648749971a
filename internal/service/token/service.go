// Package token negotiates ephemeral realtime credentials with the
// transport provider, embedding the interview instructions and the
// evaluation tool schema in every grant.
package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
	"glossa/internal/llm"
	"glossa/internal/prompt"
)

// Minter is the upstream operation this service depends on.
type Minter interface {
	MintRealtimeSession(ctx context.Context, req *llm.RealtimeSessionRequest) (*llm.RealtimeGrant, error)
}

// Service mints session grants.
type Service struct {
	minter         Minter
	model          string
	toolName       string
	phases         []prompt.PhaseSpec
	expiresSeconds int
	timeout        time.Duration
	maxRetries     uint64
	logger         *slog.Logger
}

// Options configures the token service.
type Options struct {
	Model          string
	ToolName       string
	Phases         []prompt.PhaseSpec
	ExpiresSeconds int
	Timeout        time.Duration
	MaxRetries     uint64
}

// NewService creates the token service. Minting is idempotent upstream,
// so transient failures are retried with exponential backoff up to
// MaxRetries additional attempts.
func NewService(minter Minter, opts Options, logger *slog.Logger) *Service {
	return &Service{
		minter:         minter,
		model:          opts.Model,
		toolName:       opts.ToolName,
		phases:         opts.Phases,
		expiresSeconds: opts.ExpiresSeconds,
		timeout:        opts.Timeout,
		maxRetries:     opts.MaxRetries,
		logger:         logger,
	}
}

// Mint builds the session instructions for the given language and
// duration, then negotiates an ephemeral credential. The session cannot
// go active until this completes.
func (s *Service) Mint(ctx context.Context, sessionID, language string, durationMinutes int) (*models.SessionGrant, error) {
	phases := s.phases
	if len(phases) == 0 {
		phases = prompt.DefaultPhases(durationMinutes)
	}
	instructions := prompt.BuildInstructions(language, durationMinutes, phases)

	req := &llm.RealtimeSessionRequest{
		Model:          s.model,
		Instructions:   instructions,
		Tools:          []llm.ToolDefinition{ObservationTool(s.toolName)},
		ExpiresSeconds: s.expiresSeconds,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var grant *llm.RealtimeGrant
	operation := func() error {
		var err error
		grant, err = s.minter.MintRealtimeSession(ctx, req)
		if err != nil {
			s.logger.Warn("token mint attempt failed", "session_id", sessionID, "error", err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), s.maxRetries),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, &domain.UpstreamCallError{Operation: "token negotiation", Cause: err}
	}

	return &models.SessionGrant{
		SessionID:    sessionID,
		ClientSecret: grant.ClientSecret,
		ExpiresAt:    grant.ExpiresAt,
		Model:        grant.Model,
		Instructions: instructions,
	}, nil
}
