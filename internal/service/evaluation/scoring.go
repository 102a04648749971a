package evaluation

import (
	"math"

	"glossa/internal/domain/models"
)

// Weighting of the recomputed overall score. Skills contribute up to 60
// points, conversation depth up to 20, quantitative measures up to 20.
const (
	skillWeight        = 0.6
	complexityWeight   = 2.0
	substantivePoints  = 5.0
	percentWeight      = 0.08
	avgWordsWeight     = 0.08
	avgWordsCap        = 50.0
	maxSkillScore      = 20
	maxComplexity      = 5
	maxResponseQuality = 5
	maxOverall         = 100
)

// ClampScore forces a bounded numeric field into [0, max]. Every number
// pulled from a model-produced evaluation goes through this before it is
// trusted for display or further computation.
func ClampScore(value, max float64) float64 {
	if value < 0 {
		return 0
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, max int) int {
	return int(ClampScore(float64(value), float64(max)))
}

// Sanitize clamps every bounded field of an evaluation into its declared
// range and replaces nil string lists with empty ones so the report is
// always renderable.
func Sanitize(ev *models.FinalEvaluation) {
	for _, skill := range []*models.SkillAssessment{
		&ev.Skills.Pronunciation,
		&ev.Skills.Fluency,
		&ev.Skills.Grammar,
		&ev.Skills.Vocabulary,
		&ev.Skills.Comprehension,
	} {
		skill.Score = clampInt(skill.Score, maxSkillScore)
		skill.CriticalIssues = notNil(skill.CriticalIssues)
		skill.Examples = notNil(skill.Examples)
	}

	depth := &ev.ConversationDepth
	depth.ComplexityLevel = clampInt(depth.ComplexityLevel, maxComplexity)
	depth.ResponseQuality = clampInt(depth.ResponseQuality, maxResponseQuality)
	depth.TopicsDiscussed = notNil(depth.TopicsDiscussed)

	quant := &ev.QuantitativeMeasures
	quant.ResponseAccuracyPercent = ClampScore(quant.ResponseAccuracyPercent, 100)
	quant.ComprehensionPercent = ClampScore(quant.ComprehensionPercent, 100)
	if quant.AverageResponseLengthWords < 0 {
		quant.AverageResponseLengthWords = 0
	}
	if quant.TotalUserTurns < 0 {
		quant.TotalUserTurns = 0
	}
	if quant.TotalWords < 0 {
		quant.TotalWords = 0
	}

	ev.FinalScores.OverallScore = clampInt(ev.FinalScores.OverallScore, maxOverall)

	fb := &ev.CriticalFeedback
	fb.Strengths = notNil(fb.Strengths)
	fb.Weaknesses = notNil(fb.Weaknesses)
	fb.Recommendations = notNil(fb.Recommendations)
}

// ComputeOverallScore derives the overall score from the already
// sanitized sub-scores. The model's own overall number is not trusted to
// be consistent with its sub-scores, so it is always recomputed here.
func ComputeOverallScore(ev *models.FinalEvaluation) int {
	skills := ev.Skills
	skillPoints := skillWeight * float64(
		skills.Pronunciation.Score+
			skills.Fluency.Score+
			skills.Grammar.Score+
			skills.Vocabulary.Score+
			skills.Comprehension.Score,
	)

	depth := ev.ConversationDepth
	depthPoints := complexityWeight * float64(depth.ComplexityLevel)
	if depth.SubstantiveDiscussion {
		depthPoints += substantivePoints
	}
	depthPoints += float64(depth.ResponseQuality)

	quant := ev.QuantitativeMeasures
	quantPoints := percentWeight*quant.ResponseAccuracyPercent +
		percentWeight*quant.ComprehensionPercent +
		avgWordsWeight*math.Min(quant.AverageResponseLengthWords, avgWordsCap)

	total := math.Round(skillPoints + depthPoints + quantPoints)
	return int(ClampScore(total, maxOverall))
}

// CEFRLevel maps an overall score to its CEFR band. Thresholds are
// inclusive lower bounds.
func CEFRLevel(score int) string {
	switch {
	case score >= 95:
		return models.CEFRC2
	case score >= 85:
		return models.CEFRC1
	case score >= 70:
		return models.CEFRB2
	case score >= 55:
		return models.CEFRB1
	case score >= 35:
		return models.CEFRA2
	case score >= 15:
		return models.CEFRA1
	default:
		return models.CEFRBelowA1
	}
}

func notNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
