// Package worth implements the resume market-value evaluation pipeline:
// language detection, objective criteria scoring, prompt composition, the
// streaming extraction of the tagged response, and score aggregation.
package worth

import "strings"

// Locale bundles every locale/currency/format convention the pipeline uses.
// One configurable object instead of per-variant prompt templates.
type Locale struct {
	// Language is the fallback when detection fails or the document is empty.
	Language string
	// Currency is the marker appended to estimates lacking a currency symbol.
	Currency string
	// Country is the fallback when the caller provides no location.
	Country string
	// Tone is the register instruction embedded in the main prompt.
	Tone string
}

// DefaultLocale matches the originally deployed configuration.
func DefaultLocale() Locale {
	return Locale{
		Language: "french",
		Currency: "€",
		Country:  "France",
		Tone:     "professional but direct, addressing the candidate personally",
	}
}

func (l Locale) withDefaults() Locale {
	def := DefaultLocale()
	if strings.TrimSpace(l.Language) == "" {
		l.Language = def.Language
	}
	if strings.TrimSpace(l.Currency) == "" {
		l.Currency = def.Currency
	}
	if strings.TrimSpace(l.Country) == "" {
		l.Country = def.Country
	}
	if strings.TrimSpace(l.Tone) == "" {
		l.Tone = def.Tone
	}
	return l
}

// LocationContext narrows the market the estimate is computed against. Only
// Country is required; empty optional fields are omitted from the prompt.
type LocationContext struct {
	Country       string
	City          string
	CompanyType   string
	CustomCompany string
}

var countryAliases = map[string]string{
	"usa":         "United States",
	"us":          "United States",
	"etats unis":  "United States",
	"etats-unis":  "United States",
	"états-unis":  "United States",
	"uk":          "United Kingdom",
	"england":     "United Kingdom",
	"angleterre":  "United Kingdom",
	"royaume-uni": "United Kingdom",
	"deutschland": "Germany",
	"allemagne":   "Germany",
	"españa":      "Spain",
	"espana":      "Spain",
	"espagne":     "Spain",
	"schweiz":     "Switzerland",
	"suisse":      "Switzerland",
	"nederland":   "Netherlands",
	"pays-bas":    "Netherlands",
	"belgique":    "Belgium",
	"italia":      "Italy",
	"italie":      "Italy",
}

// canonicalCountry maps common aliases and local spellings to one canonical
// name so salary standards resolve consistently.
func canonicalCountry(country string) string {
	country = strings.TrimSpace(country)
	if canonical, ok := countryAliases[strings.ToLower(country)]; ok {
		return canonical
	}
	return country
}
