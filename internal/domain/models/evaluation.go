package models

// CEFR proficiency bands, lowest to highest.
const (
	CEFRBelowA1 = "Below A1"
	CEFRA1      = "A1"
	CEFRA2      = "A2"
	CEFRB1      = "B1"
	CEFRB2      = "B2"
	CEFRC1      = "C1"
	CEFRC2      = "C2"
)

// SkillAssessment is one final per-skill rating, scored 0-20.
type SkillAssessment struct {
	Score          int      `json:"score"`
	CriticalIssues []string `json:"critical_issues"`
	Examples       []string `json:"examples"`
}

// SkillAssessments holds the five assessed skill categories.
type SkillAssessments struct {
	Pronunciation SkillAssessment `json:"pronunciation"`
	Fluency       SkillAssessment `json:"fluency"`
	Grammar       SkillAssessment `json:"grammar"`
	Vocabulary    SkillAssessment `json:"vocabulary"`
	Comprehension SkillAssessment `json:"comprehension"`
}

// ConversationDepth captures how far beyond scripted basics the
// conversation actually went.
type ConversationDepth struct {
	ComplexityLevel       int      `json:"complexity_level"`
	TopicsDiscussed       []string `json:"topics_discussed"`
	SubstantiveDiscussion bool     `json:"substantive_discussion"`
	ResponseQuality       int      `json:"response_quality"`
}

// QuantitativeMeasures are the countable properties of the candidate's
// side of the conversation.
type QuantitativeMeasures struct {
	ResponseAccuracyPercent    float64 `json:"response_accuracy_percent"`
	ComprehensionPercent       float64 `json:"comprehension_percent"`
	AverageResponseLengthWords float64 `json:"average_response_length_words"`
	TotalUserTurns             int     `json:"total_user_turns"`
	TotalWords                 int     `json:"total_words"`
}

// FinalScores is the headline result. OverallScore and CEFRLevel are
// always recomputed server-side from the validated sub-scores.
type FinalScores struct {
	OverallScore     int    `json:"overall_score"`
	CEFRLevel        string `json:"cefr_level"`
	RecommendedLevel string `json:"recommended_level"`
}

// CriticalFeedback is the qualitative portion of the report.
type CriticalFeedback struct {
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// FinalEvaluation is the terminal artifact of a session: created once per
// completed session, never updated. Every bounded numeric field must be
// clamped into its declared range before the value is trusted.
type FinalEvaluation struct {
	Skills               SkillAssessments     `json:"skills"`
	ConversationDepth    ConversationDepth    `json:"conversation_depth"`
	QuantitativeMeasures QuantitativeMeasures `json:"quantitative_measures"`
	FinalScores          FinalScores          `json:"final_scores"`
	CriticalFeedback     CriticalFeedback     `json:"critical_feedback"`
}

// FallbackEvaluation returns a fully populated zero-valued evaluation.
// Whenever the upstream call or its output fails, callers surface this
// shape so display logic never has to special-case missing data.
func FallbackEvaluation() *FinalEvaluation {
	zeroSkill := func() SkillAssessment {
		return SkillAssessment{
			Score:          0,
			CriticalIssues: []string{},
			Examples:       []string{},
		}
	}

	return &FinalEvaluation{
		Skills: SkillAssessments{
			Pronunciation: zeroSkill(),
			Fluency:       zeroSkill(),
			Grammar:       zeroSkill(),
			Vocabulary:    zeroSkill(),
			Comprehension: zeroSkill(),
		},
		ConversationDepth: ConversationDepth{
			TopicsDiscussed: []string{},
		},
		QuantitativeMeasures: QuantitativeMeasures{},
		FinalScores: FinalScores{
			OverallScore:     0,
			CEFRLevel:        CEFRBelowA1,
			RecommendedLevel: CEFRA1,
		},
		CriticalFeedback: CriticalFeedback{
			Strengths:       []string{},
			Weaknesses:      []string{},
			Recommendations: []string{},
		},
	}
}
