package worth

// Criterion is a single evaluation dimension from the fixed catalog.
type Criterion struct {
	ID          string
	Name        string
	Description string
}

// ScoreSet maps catalog ids to scores in [1,5]. After any scoring attempt
// every catalog id is present.
type ScoreSet map[string]int

const (
	// DefaultScore is the score assigned to a criterion when the scorer
	// produced nothing usable for it.
	DefaultScore = 3

	minScore = 1
	maxScore = 5
)

var catalog = []Criterion{
	{ID: "experience", Name: "Experience", Description: "Years of relevant professional experience"},
	{ID: "skills", Name: "Technical skills", Description: "Command of the required technical skills"},
	{ID: "education", Name: "Education", Description: "Level and relevance of education"},
	{ID: "soft_skills", Name: "Soft skills", Description: "Communication, teamwork and adaptability"},
	{ID: "leadership", Name: "Leadership", Description: "Ability to lead teams and take initiative"},
	{ID: "achievements", Name: "Achievements", Description: "Quantifiable accomplishments and results"},
	{ID: "cv_clarity", Name: "Resume clarity", Description: "Organization and presentation of the resume"},
	{ID: "market_fit", Name: "Market fit", Description: "Match with current market demand"},
	{ID: "languages", Name: "Languages", Description: "Command of foreign languages"},
	{ID: "industry_knowledge", Name: "Industry knowledge", Description: "Familiarity with the targeted industry"},
}

// Catalog returns the evaluation criteria in display order.
func Catalog() []Criterion {
	out := make([]Criterion, len(catalog))
	copy(out, catalog)
	return out
}

// DefaultScores returns a complete ScoreSet with every catalog id at the
// default score.
func DefaultScores() ScoreSet {
	scores := make(ScoreSet, len(catalog))
	for _, c := range catalog {
		scores[c.ID] = DefaultScore
	}
	return scores
}

// Merge overlays parsed values on top of a complete default map. Unknown ids
// are dropped and values are clamped to the valid range, so the result always
// covers exactly the catalog.
func (s ScoreSet) Merge(parsed map[string]int) ScoreSet {
	merged := make(ScoreSet, len(s))
	for id, score := range s {
		merged[id] = score
	}
	for _, c := range catalog {
		score, ok := parsed[c.ID]
		if !ok {
			continue
		}
		merged[c.ID] = clampScore(score)
	}
	return merged
}

func clampScore(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
