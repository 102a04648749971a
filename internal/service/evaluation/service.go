// Package evaluation converts a reconstructed transcript into a
// validated, internally consistent proficiency report. The remote model
// supplies the judgment; this package supplies the arithmetic and the
// distrust.
package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
	"glossa/internal/llm"
)

// ModelClient is the one upstream operation this service needs.
type ModelClient interface {
	CompleteStructured(ctx context.Context, req *llm.StructuredRequest) (json.RawMessage, error)
}

// Service is the final-evaluation aggregator.
type Service struct {
	client  ModelClient
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates the aggregator. The timeout bounds the single
// upstream call; there is no retry on this path.
func NewService(client ModelClient, model string, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		client:  client,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

const systemPrompt = "You are a strict oral language proficiency assessor. " +
	"Given the transcript of a spoken interview, produce a complete evaluation " +
	"conforming exactly to the provided schema. Score skills 0-20. Be critical: " +
	"reserve high scores for genuinely strong performance, and cite concrete " +
	"examples from the transcript for every issue you raise."

// Aggregate scores one finished session. It fails with
// domain.EmptyTranscriptError before any network activity if the
// transcript has no turns; upstream failures come back as
// UpstreamCallError or UpstreamSchemaError, and the caller pairs either
// with a Fallback() evaluation.
//
// The model is called exactly once. Its overall score and CEFR label are
// discarded and recomputed from the validated sub-scores, so the headline
// number is always consistent with the rubric beneath it.
func (s *Service) Aggregate(ctx context.Context, transcript []models.TranscriptTurn, duration time.Duration, observations []models.EvaluationToolObservation) (*models.FinalEvaluation, error) {
	if len(transcript) == 0 {
		return nil, &domain.EmptyTranscriptError{}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.client.CompleteStructured(ctx, &llm.StructuredRequest{
		Model:      s.model,
		System:     systemPrompt,
		User:       buildUserPrompt(transcript, duration, observations),
		SchemaName: "final_evaluation",
		Schema:     outputSchema(),
	})
	if err != nil {
		return nil, &domain.UpstreamCallError{Operation: "final evaluation", Cause: err}
	}

	var ev models.FinalEvaluation
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &domain.UpstreamSchemaError{Cause: err}
	}

	Sanitize(&ev)

	ev.FinalScores.OverallScore = ComputeOverallScore(&ev)
	ev.FinalScores.CEFRLevel = CEFRLevel(ev.FinalScores.OverallScore)
	if strings.TrimSpace(ev.FinalScores.RecommendedLevel) == "" {
		ev.FinalScores.RecommendedLevel = ev.FinalScores.CEFRLevel
	}

	s.logger.Info("evaluation aggregated",
		"turns", len(transcript),
		"overall_score", ev.FinalScores.OverallScore,
		"cefr_level", ev.FinalScores.CEFRLevel,
	)

	return &ev, nil
}

// buildUserPrompt concatenates the transcript as role-tagged lines,
// followed by the live observation history when one exists.
func buildUserPrompt(transcript []models.TranscriptTurn, duration time.Duration, observations []models.EvaluationToolObservation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Interview duration: %d seconds.\n\nTranscript:\n", int(duration.Seconds()))
	for _, turn := range transcript {
		fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
	}

	if len(observations) > 0 {
		b.WriteString("\nLive examiner observations (per phase, skills rated 1-5):\n")
		for _, obs := range observations {
			fmt.Fprintf(&b, "- phase=%s elapsed=%.0fs topics=%s",
				obs.Phase, obs.ElapsedSeconds, strings.Join(obs.TopicsCovered, ", "))
			for _, name := range slices.Sorted(maps.Keys(obs.Skills)) {
				fmt.Fprintf(&b, " %s=%d", name, obs.Skills[name].Score)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
