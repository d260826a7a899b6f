package worth

import (
	"context"
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/ndelorme/cv-worth/internal/ai"
)

//go:embed prompts/language.md
var languagePrompt string

const (
	// excerptRunes caps how much of the document is sent for classification.
	excerptRunes = 1000

	languageTemperature = 0.1
	languageMaxTokens   = 10
	maxLanguageRunes    = 40
)

// Detector infers the natural language a resume is written in via a single
// short classification call. Detection is best-effort: every failure falls
// back to the configured default language and is never surfaced.
type Detector struct {
	generator ai.Generator
	fallback  string
	logger    *zap.Logger
}

// NewDetector creates a Detector with the given fallback language.
func NewDetector(generator ai.Generator, fallback string, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		generator: generator,
		fallback:  strings.ToLower(strings.TrimSpace(fallback)),
		logger:    logger,
	}
}

// Detect returns the lowercase name of the document's language, or the
// fallback when the document is empty or the call fails.
func (d *Detector) Detect(ctx context.Context, documentText string) string {
	excerpt := strings.TrimSpace(documentText)
	if excerpt == "" {
		return d.fallback
	}

	runes := []rune(excerpt)
	if len(runes) > excerptRunes {
		excerpt = string(runes[:excerptRunes])
	}

	prompt := strings.ReplaceAll(languagePrompt, "{{EXCERPT}}", excerpt)

	raw, err := d.generator.GenerateContent(ctx, prompt, ai.Options{
		Temperature:     languageTemperature,
		MaxOutputTokens: languageMaxTokens,
	})
	if err != nil {
		d.logger.Warn("language detection failed, using fallback",
			zap.String("fallback", d.fallback),
			zap.Error(err),
		)
		return d.fallback
	}

	language := strings.ToLower(strings.TrimSpace(raw))
	language = strings.Trim(language, `"'.`)
	if language == "" || len([]rune(language)) > maxLanguageRunes {
		return d.fallback
	}

	return language
}
