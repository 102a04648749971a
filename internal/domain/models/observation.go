package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Interview phases. The phase vocabulary must match the phase script
// embedded in the session instructions; the model reports one of these
// with every observation.
const (
	PhaseWarmup       = "warmup"
	PhaseBasic        = "basic"
	PhaseIntermediate = "intermediate"
	PhaseAdvanced     = "advanced"
	PhaseClosing      = "closing"
)

// SkillObservation is one per-skill rating inside a tool observation.
type SkillObservation struct {
	Score    int      `json:"score"`
	Notes    string   `json:"notes"`
	Examples []string `json:"examples"`
}

// EvaluationToolObservation is the validated payload of one invocation of
// the evaluation tool during a live session. Appended to the session's
// observation history; never deleted.
type EvaluationToolObservation struct {
	Phase          string                      `json:"phase"`
	ElapsedSeconds float64                     `json:"elapsed_seconds"`
	TopicsCovered  []string                    `json:"topics_covered"`
	Skills         map[string]SkillObservation `json:"skills"`
	ReceivedAt     time.Time                   `json:"received_at,omitzero"`
}

// Validate checks the observation against the tool schema. The model's
// output is untrusted; anything out of range rejects the whole call.
func (o EvaluationToolObservation) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Phase,
			validation.Required,
			validation.In(PhaseWarmup, PhaseBasic, PhaseIntermediate, PhaseAdvanced, PhaseClosing),
		),
		validation.Field(&o.ElapsedSeconds, validation.Min(0.0)),
		validation.Field(&o.Skills,
			validation.Required,
			validation.Length(4, 5),
			validation.By(validateSkillObservations),
		),
	)
}

func validateSkillObservations(value interface{}) error {
	skills, _ := value.(map[string]SkillObservation)
	for name, skill := range skills {
		if err := validation.Validate(skill.Score,
			validation.Required,
			validation.Min(1),
			validation.Max(5),
		); err != nil {
			return validation.NewError("validation_skill_score", "skill "+name+": score must be an integer between 1 and 5")
		}
	}
	return nil
}
