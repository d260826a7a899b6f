package worth

import "math"

// Assessment is the overall qualitative summary derived from the criterion
// scores.
type Assessment struct {
	Overall float64
	Label   string
}

// Aggregate derives the overall score and its label from the parsed criteria.
// The overall value is the arithmetic mean rounded to one decimal place; an
// empty list yields the neutral 3.0 instead of dividing by zero.
func Aggregate(criteria []CriterionScore) Assessment {
	overall := float64(DefaultScore)
	if len(criteria) > 0 {
		sum := 0
		for _, c := range criteria {
			sum += c.Score
		}
		overall = math.Round(float64(sum)/float64(len(criteria))*10) / 10
	}

	return Assessment{Overall: overall, Label: label(overall)}
}

func label(overall float64) string {
	switch {
	case overall < 1.5:
		return "Insufficient"
	case overall < 2.5:
		return "Needs improvement"
	case overall < 3.5:
		return "Average"
	case overall < 4.5:
		return "Good"
	default:
		return "Excellent"
	}
}
