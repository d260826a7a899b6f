package worth

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/ndelorme/cv-worth/internal/ai"
	"github.com/ndelorme/cv-worth/internal/logger"
)

//go:embed prompts/scoring.md
var scoringPrompt string

const (
	scoringTemperature = 0.1
	scoringMaxTokens   = 500

	scorerPreviewLen = 200
)

// Scorer grades a resume against the criterion catalog with one generation
// call. It always returns a complete ScoreSet: anything the generator fails
// to deliver is filled from defaults, and no failure escapes this stage.
type Scorer struct {
	generator ai.Generator
	logger    *zap.Logger
}

// NewScorer creates a Scorer.
func NewScorer(generator ai.Generator, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{generator: generator, logger: log}
}

// Score returns per-criterion scores for the document. Missing or garbled
// values fall back to the default score.
func (s *Scorer) Score(ctx context.Context, documentText string) ScoreSet {
	scores := DefaultScores()

	documentText = strings.TrimSpace(documentText)
	if documentText == "" {
		return scores
	}

	raw, err := s.generator.GenerateContent(ctx, s.buildPrompt(documentText), ai.Options{
		Temperature:     scoringTemperature,
		MaxOutputTokens: scoringMaxTokens,
	})
	if err != nil {
		s.logger.Warn("objective scoring failed, using default scores", zap.Error(err))
		return scores
	}

	parsed, ok := parseScores(raw)
	if !ok {
		s.logger.Warn("objective scoring response not parseable, using default scores",
			zap.String("response_preview", logger.TruncateForLog(raw, scorerPreviewLen)),
		)
		return scores
	}

	return scores.Merge(parsed)
}

func (s *Scorer) buildPrompt(documentText string) string {
	var lines []string
	for _, c := range Catalog() {
		lines = append(lines, "- "+c.Name+" ("+c.ID+"): "+c.Description)
	}

	prompt := strings.ReplaceAll(scoringPrompt, "{{CRITERIA}}", strings.Join(lines, "\n"))
	return strings.ReplaceAll(prompt, "{{RESUME}}", documentText)
}

// parseScores mines the raw response for the first balanced JSON object and
// decodes it as a flat id-to-score map. Weak typing tolerates scores arriving
// as floats or numeric strings.
func parseScores(raw string) (map[string]int, bool) {
	span, ok := firstBalancedSpan(raw, '{', '}')
	if !ok {
		return nil, false
	}

	var loose map[string]any
	if err := json.Unmarshal([]byte(span), &loose); err != nil {
		return nil, false
	}

	parsed := make(map[string]int, len(loose))
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &parsed,
	})
	if err != nil {
		return nil, false
	}
	if err := decoder.Decode(loose); err != nil {
		return nil, false
	}

	return parsed, len(parsed) > 0
}

// firstBalancedSpan returns the first balanced open/close span in s. The scan
// counts nesting and skips over JSON string literals, so braces echoed by the
// generator outside the object do not confuse it.
func firstBalancedSpan(s string, opener, closer byte) (string, bool) {
	depth := 0
	start := -1
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
		case opener:
			if depth == 0 {
				start = i
			}
			depth++
		case closer:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
