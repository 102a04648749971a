package evaluation

// outputSchema is the strict JSON schema the remote model's final
// evaluation must conform to. Strict structured output requires every
// property to be listed as required and additionalProperties to be
// false at every level.
func outputSchema() map[string]any {
	skill := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"score", "critical_issues", "examples"},
		"properties": map[string]any{
			"score":           map[string]any{"type": "integer", "minimum": 0, "maximum": 20},
			"critical_issues": stringList(),
			"examples":        stringList(),
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"skills", "conversation_depth", "quantitative_measures",
			"final_scores", "critical_feedback",
		},
		"properties": map[string]any{
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
			"conversation_depth": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"complexity_level", "topics_discussed", "substantive_discussion", "response_quality"},
				"properties": map[string]any{
					"complexity_level":       map[string]any{"type": "integer", "minimum": 0, "maximum": 5},
					"topics_discussed":       stringList(),
					"substantive_discussion": map[string]any{"type": "boolean"},
					"response_quality":       map[string]any{"type": "integer", "minimum": 0, "maximum": 5},
				},
			},
			"quantitative_measures": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required": []string{
					"response_accuracy_percent", "comprehension_percent",
					"average_response_length_words", "total_user_turns", "total_words",
				},
				"properties": map[string]any{
					"response_accuracy_percent":     map[string]any{"type": "number", "minimum": 0, "maximum": 100},
					"comprehension_percent":         map[string]any{"type": "number", "minimum": 0, "maximum": 100},
					"average_response_length_words": map[string]any{"type": "number", "minimum": 0},
					"total_user_turns":              map[string]any{"type": "integer", "minimum": 0},
					"total_words":                   map[string]any{"type": "integer", "minimum": 0},
				},
			},
			"final_scores": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"overall_score", "cefr_level", "recommended_level"},
				"properties": map[string]any{
					"overall_score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
					"cefr_level": map[string]any{
						"type": "string",
						"enum": []string{"Below A1", "A1", "A2", "B1", "B2", "C1", "C2"},
					},
					"recommended_level": map[string]any{"type": "string"},
				},
			},
			"critical_feedback": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"strengths", "weaknesses", "recommendations"},
				"properties": map[string]any{
					"strengths":       stringList(),
					"weaknesses":      stringList(),
					"recommendations": stringList(),
				},
			},
		},
	}
}

func stringList() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
