// Package prompt builds the instruction payload embedded in the ephemeral
// session grant: the phase script the interview must progress through and
// the directives governing the evaluation tool.
package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"glossa/internal/domain/models"
)

// PhaseSpec describes one phase of the interview script. Name must match
// the phase vocabulary the evaluation tool reports, or observations will
// fail validation.
type PhaseSpec struct {
	Name    string `yaml:"name" json:"name"`
	Goal    string `yaml:"goal" json:"goal"`
	Minutes int    `yaml:"minutes" json:"minutes"`
}

// DefaultPhases returns the built-in five-phase script sized to the given
// session length. Phase minutes are a guideline for the model, not a hard
// cutoff.
func DefaultPhases(durationMinutes int) []PhaseSpec {
	if durationMinutes <= 0 {
		durationMinutes = 10
	}

	// Rough split: short bookends, the middle three carry the session.
	middle := (durationMinutes - 2) / 3
	if middle < 1 {
		middle = 1
	}

	return []PhaseSpec{
		{Name: models.PhaseWarmup, Minutes: 1,
			Goal: "Greet the candidate, explain the format, and put them at ease with light small talk."},
		{Name: models.PhaseBasic, Minutes: middle,
			Goal: "Everyday basics: introductions, daily routine, family, work or study. Short concrete questions."},
		{Name: models.PhaseIntermediate, Minutes: middle,
			Goal: "Practical scenarios: describing past events, making plans, giving directions, handling a complication."},
		{Name: models.PhaseAdvanced, Minutes: middle,
			Goal: "Abstract discussion: opinions, hypotheticals, argumentation on a topic the candidate cares about."},
		{Name: models.PhaseClosing, Minutes: 1,
			Goal: "Wind down, thank the candidate, and tell them their evaluation is being prepared."},
	}
}

// LoadPhases reads a phase script from a YAML file. Used to override the
// built-in script per deployment.
func LoadPhases(path string) ([]PhaseSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read phase script: %w", err)
	}

	var phases []PhaseSpec
	if err := yaml.Unmarshal(data, &phases); err != nil {
		return nil, fmt.Errorf("parse phase script: %w", err)
	}

	if len(phases) == 0 {
		return nil, fmt.Errorf("phase script %s is empty", path)
	}
	for i, p := range phases {
		if p.Name == "" {
			return nil, fmt.Errorf("phase script %s: phase %d has no name", path, i)
		}
	}

	return phases, nil
}
