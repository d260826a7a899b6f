package worth

import (
	"reflect"
	"strings"
	"testing"
)

const fullResponse = `<Estimated Worth>45000 - 50000€</Estimated Worth>
<Overview>Your profile is solid but lacks quantified results.</Overview>
<Explanation>
   <ul>
      <li>Five years of relevant backend experience</li>
      <li>Strong cloud skill set</li>
      <li>No quantified achievements</li>
      <li>Clear layout</li>
   </ul>
</Explanation>
<Improvements>
   <ul>
      <li>Add metrics to achievements</li>
      <li>List certifications</li>
      <li>Strengthen leadership evidence</li>
      <li>Tailor the resume to the market</li>
   </ul>
</Improvements>
<Criteria>
[
  {"name": "Experience", "score": 4, "description": "Years of relevant professional experience"},
  {"name": "Technical skills", "score": 2, "description": "Command of the required technical skills"}
]
</Criteria>`

func TestParseWorthOnlyBuffer(t *testing.T) {
	e := NewExtractor("€")

	result := e.Parse("<Estimated Worth>45000 - 50000€</Estimated Worth>", true)

	if result.EstimatedWorth != "45000 - 50000€" {
		t.Fatalf("unexpected worth: %q", result.EstimatedWorth)
	}
	if len(result.ExplanationItems) != 0 {
		t.Fatalf("expected no explanation items, got %v", result.ExplanationItems)
	}
	if len(result.ImprovementItems) != 0 {
		t.Fatalf("expected no improvement items, got %v", result.ImprovementItems)
	}
	if result.Overview != "" {
		t.Fatalf("expected empty overview, got %q", result.Overview)
	}
	if !reflect.DeepEqual(result.Criteria, DefaultCriteria()) {
		t.Fatalf("expected default criteria, got %v", result.Criteria)
	}
}

func TestParseFullResponse(t *testing.T) {
	e := NewExtractor("€")

	result := e.Parse(fullResponse, true)

	if result.EstimatedWorth != "45000 - 50000€" {
		t.Fatalf("unexpected worth: %q", result.EstimatedWorth)
	}
	if result.Overview != "Your profile is solid but lacks quantified results." {
		t.Fatalf("unexpected overview: %q", result.Overview)
	}
	if len(result.ExplanationItems) != 4 || result.ExplanationItems[0] != "Five years of relevant backend experience" {
		t.Fatalf("unexpected explanation items: %v", result.ExplanationItems)
	}
	if len(result.ImprovementItems) != 4 || result.ImprovementItems[3] != "Tailor the resume to the market" {
		t.Fatalf("unexpected improvement items: %v", result.ImprovementItems)
	}
	if len(result.Criteria) != 2 || result.Criteria[0].Score != 4 || result.Criteria[1].Name != "Technical skills" {
		t.Fatalf("unexpected criteria: %v", result.Criteria)
	}
}

func TestParseEmptyBufferComplete(t *testing.T) {
	e := NewExtractor("€")

	result := e.Parse("", true)

	if result.EstimatedWorth != "N/A" {
		t.Fatalf("unexpected worth: %q", result.EstimatedWorth)
	}
	if result.Overview != "" || len(result.ExplanationItems) != 0 || len(result.ImprovementItems) != 0 {
		t.Fatalf("expected empty fields, got %+v", result)
	}
	if len(result.Criteria) != 10 {
		t.Fatalf("expected ten default criteria, got %d", len(result.Criteria))
	}
	for _, c := range result.Criteria {
		if c.Score != DefaultScore {
			t.Fatalf("expected default score for %s, got %d", c.Name, c.Score)
		}
	}
}

func TestChunkingInvariance(t *testing.T) {
	whole := NewExtractor("€").Parse(fullResponse, true)

	for _, size := range []int{1, 3, 7, 16, 64} {
		e := NewExtractor("€")

		var buffer strings.Builder
		var last Result
		for i := 0; i < len(fullResponse); i += size {
			end := i + size
			if end > len(fullResponse) {
				end = len(fullResponse)
			}
			buffer.WriteString(fullResponse[i:end])
			last = e.Parse(buffer.String(), false)
		}
		_ = last

		final := e.Parse(buffer.String(), true)
		if !reflect.DeepEqual(final, whole) {
			t.Fatalf("chunk size %d: incremental result differs from whole-buffer result:\n%+v\nvs\n%+v", size, final, whole)
		}
	}
}

func TestMonotonicResolution(t *testing.T) {
	e := NewExtractor("€")

	prefix := "<Estimated Worth>45000 - 50000€</Estimated Worth>\n<Overview>So far so go"
	first := e.Parse(prefix, false)

	if first.EstimatedWorth != "45000 - 50000€" {
		t.Fatalf("expected worth resolved, got %q", first.EstimatedWorth)
	}
	// The overview close tag has not arrived: no truncated text may leak.
	if first.Overview != "" {
		t.Fatalf("expected unresolved overview to stay empty, got %q", first.Overview)
	}

	second := e.Parse(prefix+"od.</Overview>", false)
	if second.EstimatedWorth != first.EstimatedWorth {
		t.Fatalf("resolved worth regressed: %q -> %q", first.EstimatedWorth, second.EstimatedWorth)
	}
	if second.Overview != "So far so good." {
		t.Fatalf("unexpected overview: %q", second.Overview)
	}

	// Identical final buffers parse identically.
	final := e.Parse(prefix+"od.</Overview>", true)
	again := e.Parse(prefix+"od.</Overview>", true)
	if !reflect.DeepEqual(final, again) {
		t.Fatalf("final parse is not deterministic: %+v vs %+v", final, again)
	}
}

func TestBulletFallbackWhenTagsMissing(t *testing.T) {
	buffer := `Your resume is decent.

Explanation:
- solid experience
- good education
Improvements:
* add metrics
* learn a framework

Good luck!`

	e := NewExtractor("€")
	result := e.Parse(buffer, true)

	wantExplanation := []string{"solid experience", "good education"}
	if !reflect.DeepEqual(result.ExplanationItems, wantExplanation) {
		t.Fatalf("unexpected explanation items: %v", result.ExplanationItems)
	}

	wantImprovements := []string{"add metrics", "learn a framework"}
	if !reflect.DeepEqual(result.ImprovementItems, wantImprovements) {
		t.Fatalf("unexpected improvement items: %v", result.ImprovementItems)
	}
}

func TestCriteriaSecondChanceScan(t *testing.T) {
	buffer := `Here are your criteria as requested:
[
  {"name": "Experience", "score": 5, "description": "Years of relevant professional experience"}
]
Hope this helps!`

	e := NewExtractor("€")
	result := e.Parse(buffer, true)

	if len(result.Criteria) != 1 || result.Criteria[0].Score != 5 {
		t.Fatalf("expected criteria from loose array, got %v", result.Criteria)
	}
}

func TestCriteriaGarbledTagUsesLooseArray(t *testing.T) {
	buffer := `<Criteria>see the list above</Criteria>
The actual list: [{"name": "Education", "score": 2, "description": "Level and relevance of education"}]`

	e := NewExtractor("€")
	result := e.Parse(buffer, true)

	if len(result.Criteria) != 1 || result.Criteria[0].Name != "Education" {
		t.Fatalf("expected second-chance criteria, got %v", result.Criteria)
	}
}

func TestCriteriaScoreClamped(t *testing.T) {
	buffer := `<Criteria>[{"name": "Experience", "score": 9, "description": "d"}, {"name": "Education", "score": -1, "description": "d"}]</Criteria>`

	e := NewExtractor("€")
	result := e.Parse(buffer, true)

	if result.Criteria[0].Score != 5 || result.Criteria[1].Score != 1 {
		t.Fatalf("expected clamped scores, got %v", result.Criteria)
	}
}

func TestNormalizeWorth(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "leading symbol moved to end", input: "€52000", expected: "52000 €"},
		{name: "missing symbol appended", input: "52000", expected: "52000 €"},
		{name: "trailing symbol untouched", input: "45000 - 50000€", expected: "45000 - 50000€"},
		{name: "dollar range", input: "$60000 - 70000", expected: "60000 - 70000 $"},
		{name: "ellipsis stripped", input: "...", expected: "N/A"},
		{name: "unicode ellipsis stripped", input: "…", expected: "N/A"},
		{name: "empty value", input: "", expected: "N/A"},
		{name: "lone symbol kept", input: "€", expected: "€"},
		{name: "placeholder kept", input: "N/A", expected: "N/A"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeWorth(tc.input, "€"); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNormalizeWorthIdempotent(t *testing.T) {
	inputs := []string{
		"€52000",
		"52000",
		"45000 - 50000€",
		"$60000 - 70000",
		"...",
		"",
		"€",
		"N/A",
		"€52000€",
		"  48000 ... €  ",
	}

	for _, input := range inputs {
		once := normalizeWorth(input, "€")
		twice := normalizeWorth(once, "€")
		if once != twice {
			t.Fatalf("normalization not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestNormalizeWorthWordCurrency(t *testing.T) {
	if got := normalizeWorth("520000", "kr"); got != "520000 kr" {
		t.Fatalf("unexpected normalization: %q", got)
	}
	if got := normalizeWorth("520000 kr", "kr"); got != "520000 kr" {
		t.Fatalf("expected word currency to be idempotent, got %q", got)
	}
}
