package scoring

import (
	"fmt"

	"github.com/tinytelemetry/mockview/internal/model"
)

// Insights summarizes a completed interview. It returns the zero value when
// there are no answers.
func Insights(iv model.Interview, answers []model.Answer) model.Insights {
	if len(answers) == 0 {
		return model.Insights{}
	}

	var high, low int
	for _, a := range answers {
		if a.Score >= strongThreshold {
			high++
		}
		if a.Score < decentThreshold {
			low++
		}
	}

	level, color := performanceLevel(iv.TotalScore)

	var strengths, weaknesses []string
	if high > 0 {
		strengths = append(strengths, fmt.Sprintf("Strong performance on %d out of %d questions", high, len(answers)))
	}
	if iv.TotalScore >= 60 {
		strengths = append(strengths, "Good overall understanding of concepts")
	}
	if low > 0 {
		weaknesses = append(weaknesses, fmt.Sprintf("Struggled with %d questions", low))
	}
	if iv.TotalScore < 60 {
		weaknesses = append(weaknesses, "Need to strengthen fundamental concepts")
	}

	return model.Insights{
		PerformanceLevel: level,
		PerformanceColor: color,
		Strengths:        strengths,
		Weaknesses:       weaknesses,
		Resources:        Resources(iv.Role),
		HighPerforming:   high,
		LowPerforming:    low,
	}
}

func performanceLevel(total float64) (level, color string) {
	switch {
	case total >= 80:
		return "Excellent", "success"
	case total >= 60:
		return "Good", "info"
	case total >= 40:
		return "Fair", "warning"
	default:
		return "Needs Improvement", "danger"
	}
}
