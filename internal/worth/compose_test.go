package worth

import (
	"reflect"
	"strings"
	"testing"
)

func TestComposeCarriesOutputContract(t *testing.T) {
	c := NewComposer(Locale{})

	req := c.Compose("resume text", LocationContext{}, "english", DefaultScores())

	for _, tag := range []string{tagWorth, tagOverview, tagExplanation, tagImprovements, tagCriteria} {
		if !strings.Contains(req.Prompt, "<"+tag+">") {
			t.Fatalf("prompt is missing the %s tag", tag)
		}
	}

	if req.Options.Temperature != analysisTemperature || req.Options.MaxOutputTokens != analysisMaxTokens {
		t.Fatalf("unexpected options: %+v", req.Options)
	}
}

func TestComposeInlinesObjectiveScores(t *testing.T) {
	c := NewComposer(Locale{})

	scores := DefaultScores()
	scores["experience"] = 5
	scores["skills"] = 1

	req := c.Compose("resume text", LocationContext{}, "english", scores)

	if !strings.Contains(req.Prompt, "- experience: 5/5") {
		t.Fatal("experience score missing from the preliminary analysis")
	}
	if !strings.Contains(req.Prompt, `{"name": "Experience", "score": 5,`) {
		t.Fatal("experience score missing from the criteria block")
	}
	if !strings.Contains(req.Prompt, `{"name": "Technical skills", "score": 1,`) {
		t.Fatal("skills score missing from the criteria block")
	}
}

func TestComposeLocationFields(t *testing.T) {
	c := NewComposer(Locale{})

	req := c.Compose("resume text", LocationContext{
		Country:     "usa",
		City:        "Austin",
		CompanyType: "startup",
	}, "english", DefaultScores())

	if !strings.Contains(req.Prompt, "- Country: United States") {
		t.Fatal("country alias not canonicalized")
	}
	if !strings.Contains(req.Prompt, "- City: Austin") {
		t.Fatal("city missing")
	}
	if strings.Contains(req.Prompt, "- Targeted company:") {
		t.Fatal("absent optional field must be omitted")
	}
}

func TestComposeDefaults(t *testing.T) {
	c := NewComposer(Locale{})

	req := c.Compose("resume text", LocationContext{}, "", DefaultScores())

	if !strings.Contains(req.Prompt, "- Country: France") {
		t.Fatal("expected default country")
	}
	if !strings.Contains(req.Prompt, "FRENCH") {
		t.Fatal("expected default language, uppercased")
	}
	if !strings.Contains(req.Prompt, "€") {
		t.Fatal("expected default currency")
	}
}

func TestComposeIsPure(t *testing.T) {
	c := NewComposer(Locale{})
	loc := LocationContext{Country: "Germany", City: "Berlin"}
	scores := DefaultScores()

	first := c.Compose("resume text", loc, "german", scores)
	second := c.Compose("resume text", loc, "german", scores)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must produce identical requests")
	}
}
