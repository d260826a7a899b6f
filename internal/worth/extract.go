package worth

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"
)

// CriterionScore is one entry of the Criteria section of the response.
type CriterionScore struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Result is the parsed evaluation. Every field carries a deterministic
// fallback, so a Result is always renderable even when built from an empty
// or malformed buffer.
type Result struct {
	EstimatedWorth   string           `json:"estimated_worth"`
	Overview         string           `json:"overview"`
	ExplanationItems []string         `json:"explanation_items"`
	ImprovementItems []string         `json:"improvement_items"`
	Criteria         []CriterionScore `json:"criteria"`
}

const (
	tagWorth        = "Estimated Worth"
	tagOverview     = "Overview"
	tagExplanation  = "Explanation"
	tagImprovements = "Improvements"
	tagCriteria     = "Criteria"

	worthFallback = "N/A"

	currencySymbols = "€$£¥₹"
)

var listItemRe = regexp.MustCompile(`(?s)<li>\s*(.+?)\s*</li>`)

// DefaultCriteria returns the catalog rendered as criterion scores at the
// default value.
func DefaultCriteria() []CriterionScore {
	out := make([]CriterionScore, 0, len(catalog))
	for _, c := range catalog {
		out = append(out, CriterionScore{Name: c.Name, Score: DefaultScore, Description: c.Description})
	}
	return out
}

// Extractor incrementally parses the tagged generation response. Parse may be
// called after every fragment with the whole accumulated buffer; each call is
// a fresh re-derivation from that buffer, except that a field resolved once
// keeps its value forever (no regression, no flashing of truncated text).
//
// Two tiers per field: the primary tag-pair contract, then, once the stream
// is complete, a label-plus-bullets heuristic for the list sections and a
// last-balanced-array scan for the criteria. Whatever remains unresolved at
// completion is forced to its default.
type Extractor struct {
	currency string

	worth    *string
	overview *string

	explanation         []string
	explanationResolved bool

	improvements         []string
	improvementsResolved bool

	criteria []CriterionScore
}

// NewExtractor creates an Extractor appending the given currency marker to
// estimates lacking one.
func NewExtractor(currency string) *Extractor {
	if strings.TrimSpace(currency) == "" {
		currency = DefaultLocale().Currency
	}
	return &Extractor{currency: currency}
}

// Parse consumes the accumulated buffer and returns the current best-effort
// result. With complete=true the result is final: unresolved fields get their
// defaults and later calls cannot change resolved values.
func (e *Extractor) Parse(buffer string, complete bool) Result {
	if e.worth == nil {
		if inner, ok := tagInner(buffer, tagWorth); ok {
			v := normalizeWorth(inner, e.currency)
			e.worth = &v
		} else if complete {
			v := worthFallback
			e.worth = &v
		}
	}

	if e.overview == nil {
		if inner, ok := tagInner(buffer, tagOverview); ok {
			v := strings.TrimSpace(inner)
			e.overview = &v
		} else if complete {
			v := ""
			e.overview = &v
		}
	}

	if !e.explanationResolved {
		if items, ok := e.resolveList(buffer, tagExplanation, complete); ok {
			e.explanation = items
			e.explanationResolved = true
		}
	}

	if !e.improvementsResolved {
		if items, ok := e.resolveList(buffer, tagImprovements, complete); ok {
			e.improvements = items
			e.improvementsResolved = true
		}
	}

	if e.criteria == nil {
		e.resolveCriteria(buffer, complete)
	}

	return e.snapshot()
}

func (e *Extractor) resolveList(buffer, tag string, complete bool) ([]string, bool) {
	if inner, ok := tagInner(buffer, tag); ok {
		return listItems(inner), true
	}
	if complete {
		return bulletFallback(buffer, tag), true
	}
	return nil, false
}

func (e *Extractor) resolveCriteria(buffer string, complete bool) {
	if inner, ok := tagInner(buffer, tagCriteria); ok {
		if parsed, ok := parseCriteriaArray(inner); ok {
			e.criteria = parsed
			return
		}
		// The tag closed but its payload is garbled; the generator may have
		// wrapped the real array in commentary elsewhere.
		if parsed, ok := parseCriteriaArray(lastBalancedArray(buffer)); ok {
			e.criteria = parsed
			return
		}
	}

	if !complete {
		return
	}

	if parsed, ok := parseCriteriaArray(lastBalancedArray(buffer)); ok {
		e.criteria = parsed
		return
	}

	e.criteria = DefaultCriteria()
}

// snapshot copies the current state into a Result, substituting defaults for
// unresolved fields so the value is renderable at any point of the stream.
func (e *Extractor) snapshot() Result {
	res := Result{
		EstimatedWorth:   worthFallback,
		ExplanationItems: []string{},
		ImprovementItems: []string{},
		Criteria:         DefaultCriteria(),
	}

	if e.worth != nil {
		res.EstimatedWorth = *e.worth
	}
	if e.overview != nil {
		res.Overview = *e.overview
	}
	if e.explanation != nil {
		res.ExplanationItems = append([]string{}, e.explanation...)
	}
	if e.improvements != nil {
		res.ImprovementItems = append([]string{}, e.improvements...)
	}
	if e.criteria != nil {
		res.Criteria = append([]CriterionScore{}, e.criteria...)
	}

	return res
}

// tagInner returns the content of the first open/close pair for the tag. The
// tag resolves only once its closing marker is in the buffer; an open tag
// whose close has not arrived yet stays unresolved.
func tagInner(buffer, tag string) (string, bool) {
	open := "<" + tag + ">"
	i := strings.Index(buffer, open)
	if i < 0 {
		return "", false
	}

	rest := buffer[i+len(open):]
	j := strings.Index(rest, "</"+tag+">")
	if j < 0 {
		return "", false
	}

	return rest[:j], true
}

func listItems(inner string) []string {
	matches := listItemRe.FindAllStringSubmatch(inner, -1)
	items := make([]string, 0, len(matches))
	for _, m := range matches {
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// bulletFallback salvages a list when the tag contract was not honored: find
// the section label, then collect the contiguous run of "-" or "*" bullet
// lines that follows it.
func bulletFallback(buffer, label string) []string {
	idx := strings.Index(strings.ToLower(buffer), strings.ToLower(label))
	if idx < 0 {
		return nil
	}

	var items []string
	lines := strings.Split(buffer[idx:], "\n")
	for _, line := range lines[1:] {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			if item := strings.TrimSpace(trimmed[2:]); item != "" {
				items = append(items, item)
			}
			continue
		}

		if len(items) > 0 {
			break
		}
	}

	return items
}

func parseCriteriaArray(s string) ([]CriterionScore, bool) {
	span, ok := firstBalancedSpan(s, '[', ']')
	if !ok {
		return nil, false
	}

	var parsed []CriterionScore
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, false
	}
	if len(parsed) == 0 {
		return nil, false
	}

	for i := range parsed {
		if strings.TrimSpace(parsed[i].Name) == "" {
			return nil, false
		}
		parsed[i].Score = clampScore(parsed[i].Score)
	}

	return parsed, true
}

// lastBalancedArray returns the last complete top-level array literal in the
// buffer, or an empty string when none exists.
func lastBalancedArray(s string) string {
	depth := 0
	start := -1
	last := ""
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[':
			if depth == 0 {
				start = i
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				last = s[start : i+1]
				start = -1
			}
		}
	}

	return last
}

// normalizeWorth cleans the estimate: placeholder ellipsis tokens are
// stripped and the currency symbol always trails the value. Re-applying the
// normalization to an already-normalized string is a no-op.
func normalizeWorth(s, currency string) string {
	s = strings.ReplaceAll(s, "…", "")
	s = strings.ReplaceAll(s, "...", "")
	s = strings.TrimSpace(s)

	if s == "" || s == worthFallback {
		return worthFallback
	}

	if !strings.ContainsAny(s, currencySymbols) {
		if currency != "" && strings.Contains(s, currency) {
			return s
		}
		return s + " " + currency
	}

	r, size := utf8.DecodeRuneInString(s)
	if strings.ContainsRune(currencySymbols, r) {
		rest := strings.TrimSpace(s[size:])
		if rest == "" {
			return s
		}
		return rest + " " + string(r)
	}

	return s
}
