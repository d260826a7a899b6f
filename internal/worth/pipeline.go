package worth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ndelorme/cv-worth/internal/ai"
	"github.com/ndelorme/cv-worth/internal/logger"
)

const pipelinePreviewLen = 200

// Report is the final outcome of an evaluation.
type Report struct {
	Result   Result   `json:"result"`
	Overall  float64  `json:"overall"`
	Label    string   `json:"label"`
	Language string   `json:"language"`
	Scores   ScoreSet `json:"scores"`
}

// UpdateFunc receives each raw response fragment together with the current
// best-effort parse of the accumulated buffer.
type UpdateFunc func(fragment string, partial Result)

// Pipeline runs the full evaluation: language detection and objective scoring
// (concurrently, both best-effort), prompt composition, the streamed main
// generation call, incremental extraction, and score aggregation.
//
// All state is request-scoped; a single Pipeline can serve concurrent
// evaluations.
type Pipeline struct {
	generator ai.Generator
	detector  *Detector
	scorer    *Scorer
	composer  *Composer
	locale    Locale
	logger    *zap.Logger
}

// NewPipeline wires the evaluation stages around one generator.
func NewPipeline(generator ai.Generator, locale Locale, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	locale = locale.withDefaults()

	return &Pipeline{
		generator: generator,
		detector:  NewDetector(generator, locale.Language, log),
		scorer:    NewScorer(generator, log),
		composer:  NewComposer(locale),
		locale:    locale,
		logger:    log,
	}
}

// Evaluate runs the pipeline for one document. onUpdate, when non-nil, is
// invoked for every received fragment. The returned error covers exactly one
// condition: no generation response arrived at all. Everything else degrades
// to defaults per stage.
func (p *Pipeline) Evaluate(ctx context.Context, documentText string, loc LocationContext, onUpdate UpdateFunc) (*Report, error) {
	documentText = strings.TrimSpace(documentText)
	if documentText == "" {
		return nil, errors.New("document text must not be empty")
	}

	var (
		language string
		scores   ScoreSet
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		language = p.detector.Detect(ctx, documentText)
	}()
	go func() {
		defer wg.Done()
		scores = p.scorer.Score(ctx, documentText)
	}()
	wg.Wait()

	p.logger.Debug("composing evaluation prompt",
		zap.String("language", language),
		zap.Int("document_length", len(documentText)),
	)

	req := p.composer.Compose(documentText, loc, language, scores)

	p.logger.Debug("evaluation prompt composed",
		zap.String("prompt_preview", logger.TruncateForLog(req.Prompt, pipelinePreviewLen)),
	)

	extractor := NewExtractor(p.locale.Currency)

	var buffer strings.Builder
	streamErr := p.generator.StreamContent(ctx, req.Prompt, req.Options, func(fragment string) error {
		buffer.WriteString(fragment)
		partial := extractor.Parse(buffer.String(), false)
		if onUpdate != nil {
			onUpdate(fragment, partial)
		}
		return nil
	})

	// A stream that never produced a fragment is the one terminal condition,
	// whether it ended with an error or closed cleanly without candidates.
	if buffer.Len() == 0 {
		if streamErr != nil {
			return nil, fmt.Errorf("no generation response: %w", streamErr)
		}
		return nil, errors.New("no generation response")
	}

	if streamErr != nil {
		// Partial output arrived before the stream broke; finalize what we
		// have instead of discarding it.
		p.logger.Warn("generation stream interrupted, finalizing partial output",
			zap.Int("buffered_bytes", buffer.Len()),
			zap.Error(streamErr),
		)
	}

	result := extractor.Parse(buffer.String(), true)
	assessment := Aggregate(result.Criteria)

	p.logger.Info("evaluation completed",
		zap.String("language", language),
		zap.Float64("overall", assessment.Overall),
		zap.String("label", assessment.Label),
	)

	return &Report{
		Result:   result,
		Overall:  assessment.Overall,
		Label:    assessment.Label,
		Language: language,
		Scores:   scores,
	}, nil
}
