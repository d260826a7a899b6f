package worth

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ndelorme/cv-worth/internal/ai"
)

//go:embed prompts/analysis.md
var analysisPrompt string

const (
	analysisTemperature = 0.3
	analysisMaxTokens   = 1500
)

// Composer assembles the final generation request. It is pure: the same
// inputs always produce the same request, and nothing is mutated.
//
// The composed prompt carries the output contract the streaming extractor
// depends on: the tagged sections in a fixed order, with the Criteria array
// filled in verbatim from the objective scores so the displayed per-criterion
// values never depend on generator compliance.
type Composer struct {
	locale Locale
}

// NewComposer creates a Composer for the given locale conventions.
func NewComposer(locale Locale) *Composer {
	return &Composer{locale: locale.withDefaults()}
}

// Compose builds the generation request for the main evaluation call.
func (c *Composer) Compose(documentText string, loc LocationContext, language string, scores ScoreSet) ai.Request {
	country := canonicalCountry(loc.Country)
	if country == "" {
		country = c.locale.Country
	}

	if language = strings.ToLower(strings.TrimSpace(language)); language == "" {
		language = c.locale.Language
	}

	replacements := []string{
		"{{COUNTRY}}", country,
		"{{LOCATION}}", locationLines(country, loc),
		"{{SCORES}}", scoreLines(scores),
		"{{LANGUAGE}}", strings.ToUpper(language),
		"{{CURRENCY}}", c.locale.Currency,
		"{{TONE}}", c.locale.Tone,
		"{{RESUME}}", strings.TrimSpace(documentText),
		"{{CRITERIA}}", criteriaBlock(scores),
	}

	return ai.Request{
		Prompt: strings.NewReplacer(replacements...).Replace(analysisPrompt),
		Options: ai.Options{
			Temperature:     analysisTemperature,
			MaxOutputTokens: analysisMaxTokens,
		},
	}
}

// locationLines renders the location context. Absent optional fields are
// omitted entirely instead of rendered as empty placeholders.
func locationLines(country string, loc LocationContext) string {
	lines := []string{"- Country: " + country}

	if city := strings.TrimSpace(loc.City); city != "" {
		lines = append(lines, "- City: "+city)
	}
	if companyType := strings.TrimSpace(loc.CompanyType); companyType != "" {
		lines = append(lines, "- Company type: "+companyType)
	}
	if company := strings.TrimSpace(loc.CustomCompany); company != "" {
		lines = append(lines, "- Targeted company: "+company)
	}

	return strings.Join(lines, "\n")
}

func scoreLines(scores ScoreSet) string {
	lines := make([]string, 0, len(catalog))
	for _, c := range catalog {
		lines = append(lines, fmt.Sprintf("- %s: %d/5", c.ID, scores.score(c.ID)))
	}
	return strings.Join(lines, "\n")
}

// criteriaBlock renders the JSON array the generator must echo inside the
// Criteria tag, in catalog order with the objective scores already inlined.
func criteriaBlock(scores ScoreSet) string {
	var b strings.Builder
	b.WriteString("[\n")
	for i, c := range catalog {
		fmt.Fprintf(&b, "  {\"name\": %q, \"score\": %d, \"description\": %q}", c.Name, scores.score(c.ID), c.Description)
		if i < len(catalog)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]")
	return b.String()
}

// score reads a criterion score, defaulting when the set lacks the id.
func (s ScoreSet) score(id string) int {
	if score, ok := s[id]; ok {
		return clampScore(score)
	}
	return DefaultScore
}
