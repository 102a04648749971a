package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"glossa/internal/domain"
	"glossa/internal/domain/models"
	"glossa/internal/llm"
)

type fakeModelClient struct {
	calls    int
	lastReq  *llm.StructuredRequest
	response json.RawMessage
	err      error
}

func (f *fakeModelClient) CompleteStructured(_ context.Context, req *llm.StructuredRequest) (json.RawMessage, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func newTestService(client ModelClient) *Service {
	return NewService(client, "test-model", time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func someTranscript() []models.TranscriptTurn {
	return []models.TranscriptTurn{
		{Role: models.RoleAssistant, Text: "¿Cómo te llamas?"},
		{Role: models.RoleUser, Text: "Me llamo Ana y vivo en Madrid."},
	}
}

const modelVerdict = `{
	"skills": {
		"pronunciation": {"score": 14, "critical_issues": [], "examples": []},
		"fluency": {"score": 12, "critical_issues": ["frequent pauses"], "examples": []},
		"grammar": {"score": 13, "critical_issues": [], "examples": []},
		"vocabulary": {"score": 11, "critical_issues": [], "examples": []},
		"comprehension": {"score": 15, "critical_issues": [], "examples": []}
	},
	"conversation_depth": {"complexity_level": 3, "topics_discussed": ["daily life"], "substantive_discussion": true, "response_quality": 3},
	"quantitative_measures": {"response_accuracy_percent": 80, "comprehension_percent": 85, "average_response_length_words": 12, "total_user_turns": 1, "total_words": 12},
	"final_scores": {"overall_score": 1, "cefr_level": "C2", "recommended_level": ""},
	"critical_feedback": {"strengths": ["good listening"], "weaknesses": [], "recommendations": []}
}`

func TestAggregateEmptyTranscript(t *testing.T) {
	client := &fakeModelClient{}
	svc := newTestService(client)

	_, err := svc.Aggregate(context.Background(), nil, time.Minute, nil)

	var emptyErr *domain.EmptyTranscriptError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyTranscriptError, got %v", err)
	}
	if client.calls != 0 {
		t.Errorf("model called %d times for an empty transcript, want 0", client.calls)
	}
}

func TestAggregateRecomputesHeadlineScore(t *testing.T) {
	client := &fakeModelClient{response: json.RawMessage(modelVerdict)}
	svc := newTestService(client)

	ev, err := svc.Aggregate(context.Background(), someTranscript(), 5*time.Minute, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("model called %d times, want 1", client.calls)
	}

	// skills (14+12+13+11+15)*0.6 = 39, depth 6+5+3 = 14,
	// quant 6.4+6.8+0.96 = 14.16; round(67.16) = 67.
	if ev.FinalScores.OverallScore != 67 {
		t.Errorf("overall = %d, want 67 (model's own 1 must be discarded)", ev.FinalScores.OverallScore)
	}
	if ev.FinalScores.CEFRLevel != "B1" {
		t.Errorf("cefr = %q, want B1 (model's claimed C2 must be discarded)", ev.FinalScores.CEFRLevel)
	}
	if ev.FinalScores.RecommendedLevel != "B1" {
		t.Errorf("recommended = %q, want B1 default", ev.FinalScores.RecommendedLevel)
	}
}

func TestAggregateSanitizesOutOfRangeVerdict(t *testing.T) {
	verdict := `{
		"skills": {
			"pronunciation": {"score": 99},
			"fluency": {"score": -2},
			"grammar": {"score": 20},
			"vocabulary": {"score": 20},
			"comprehension": {"score": 20}
		},
		"conversation_depth": {"complexity_level": 7, "substantive_discussion": true, "response_quality": 5},
		"quantitative_measures": {"response_accuracy_percent": 120, "comprehension_percent": 100, "average_response_length_words": 400},
		"final_scores": {},
		"critical_feedback": {}
	}`
	client := &fakeModelClient{response: json.RawMessage(verdict)}
	svc := newTestService(client)

	ev, err := svc.Aggregate(context.Background(), someTranscript(), time.Minute, nil)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if ev.Skills.Pronunciation.Score != 20 {
		t.Errorf("pronunciation = %d, want clamped 20", ev.Skills.Pronunciation.Score)
	}
	if ev.Skills.Fluency.Score != 0 {
		t.Errorf("fluency = %d, want clamped 0", ev.Skills.Fluency.Score)
	}
	// skills (20+0+20+20+20)*0.6 = 48, depth 10+5+5 = 20, quant 8+8+4 = 20.
	if ev.FinalScores.OverallScore != 88 {
		t.Errorf("overall = %d, want 88 from clamped inputs", ev.FinalScores.OverallScore)
	}
	if ev.FinalScores.CEFRLevel != "C1" {
		t.Errorf("cefr = %q, want C1", ev.FinalScores.CEFRLevel)
	}
}

func TestAggregateUpstreamCallError(t *testing.T) {
	client := &fakeModelClient{err: errors.New("connection refused")}
	svc := newTestService(client)

	_, err := svc.Aggregate(context.Background(), someTranscript(), time.Minute, nil)

	var callErr *domain.UpstreamCallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected UpstreamCallError, got %v", err)
	}
	if client.calls != 1 {
		t.Errorf("model called %d times, want exactly 1 (no retry on this path)", client.calls)
	}
}

func TestAggregateUpstreamSchemaError(t *testing.T) {
	client := &fakeModelClient{response: json.RawMessage(`{"skills": "not an object"`)}
	svc := newTestService(client)

	_, err := svc.Aggregate(context.Background(), someTranscript(), time.Minute, nil)

	var schemaErr *domain.UpstreamSchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected UpstreamSchemaError, got %v", err)
	}
}

func TestAggregatePromptIncludesObservations(t *testing.T) {
	client := &fakeModelClient{response: json.RawMessage(modelVerdict)}
	svc := newTestService(client)

	observations := []models.EvaluationToolObservation{{
		Phase:          models.PhaseBasic,
		ElapsedSeconds: 120,
		TopicsCovered:  []string{"family", "work"},
		Skills: map[string]models.SkillObservation{
			"fluency": {Score: 3},
			"grammar": {Score: 2},
		},
	}}

	if _, err := svc.Aggregate(context.Background(), someTranscript(), 5*time.Minute, observations); err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	prompt := client.lastReq.User
	for _, want := range []string{
		"assistant: ¿Cómo te llamas?",
		"user: Me llamo Ana y vivo en Madrid.",
		"Interview duration: 300 seconds.",
		"phase=basic",
		"topics=family, work",
		"fluency=3 grammar=2",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}

	if client.lastReq.SchemaName != "final_evaluation" {
		t.Errorf("schema name = %q, want final_evaluation", client.lastReq.SchemaName)
	}
}
