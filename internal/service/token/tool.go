package token

import "glossa/internal/llm"

// ObservationTool returns the schema of the evaluation tool embedded in
// every realtime session. Its phase enum must stay in lockstep with the
// phase script the prompt builder emits.
func ObservationTool(name string) llm.ToolDefinition {
	skill := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"score", "notes", "examples"},
		"properties": map[string]any{
			"score":    map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
			"notes":    map[string]any{"type": "string"},
			"examples": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}

	return llm.ToolDefinition{
		Type:        "function",
		Name:        name,
		Description: "Report a per-phase observation of the candidate's performance. Call after every assistant turn.",
		Parameters: map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"required":             []string{"phase", "elapsed_seconds", "topics_covered", "skills"},
			"properties": map[string]any{
				"phase": map[string]any{
					"type": "string",
					"enum": []string{"warmup", "basic", "intermediate", "advanced", "closing"},
				},
				"elapsed_seconds": map[string]any{"type": "number", "minimum": 0},
				"topics_covered":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				"skills": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"pronunciation", "fluency", "grammar", "vocabulary", "comprehension"},
					"properties": map[string]any{
						"pronunciation": skill,
						"fluency":       skill,
						"grammar":       skill,
						"vocabulary":    skill,
						"comprehension": skill,
					},
				},
			},
		},
	}
}
