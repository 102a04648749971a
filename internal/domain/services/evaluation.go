package services

import (
	"context"
	"time"

	"glossa/internal/domain/models"
)

// EvaluationService scores one finished session from its reconstructed
// transcript (plus any live tool observations).
type EvaluationService interface {
	// Aggregate calls the remote model exactly once and returns the
	// validated, recomputed evaluation. Empty transcripts fail with
	// domain.EmptyTranscriptError before any upstream call.
	Aggregate(ctx context.Context, transcript []models.TranscriptTurn, duration time.Duration, observations []models.EvaluationToolObservation) (*models.FinalEvaluation, error)
}
