package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/ndelorme/cv-worth/internal/ai"
	"github.com/ndelorme/cv-worth/internal/utils"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 2
	retryBaseDelay    = 2 * time.Second
)

// caller abstracts the genai model endpoints so tests can run without the API.
type caller interface {
	generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	stream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type apiCaller struct {
	models *genai.Models
}

func (a *apiCaller) generate(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return a.models.GenerateContent(ctx, model, contents, cfg)
}

func (a *apiCaller) stream(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return a.models.GenerateContentStream(ctx, model, contents, cfg)
}

// Generator wraps the Google GenAI client behind the ai.Generator capability.
type Generator struct {
	caller      caller
	model       string
	maxAttempts int
	logger      *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	// maxRetries counts retries, so the attempt budget is one higher.
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	maxAttempts := maxRetries + 1

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		caller:      &apiCaller{models: client.Models},
		model:       model,
		maxAttempts: maxAttempts,
		logger:      logger,
	}, nil
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
// Transient API errors are retried with a linear backoff.
func (g *Generator) GenerateContent(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.caller.generate(ctx, g.model, genai.Text(prompt), generateConfig(opts))
		if err == nil {
			output := strings.TrimSpace(responseText(resp))
			if output == "" {
				return "", errors.New("gemini api returned empty response")
			}
			return output, nil
		}

		lastErr = err
		if !isTemporary(err) || attempt == g.maxAttempts {
			break
		}

		g.logger.Debug("retrying gemini call",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if waitErr := utils.WaitFor(ctx, time.Duration(attempt)*retryBaseDelay); waitErr != nil {
			return "", waitErr
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

// StreamContent sends the prompt to Gemini and forwards response fragments to
// emit in arrival order. Fragments are passed through untouched so chunk
// boundaries survive for downstream incremental parsing.
func (g *Generator) StreamContent(ctx context.Context, prompt string, opts ai.Options, emit func(fragment string) error) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return errors.New("prompt must not be empty")
	}

	for resp, err := range g.caller.stream(ctx, g.model, genai.Text(prompt), generateConfig(opts)) {
		if err != nil {
			return fmt.Errorf("stream content: %w", err)
		}

		fragment := responseText(resp)
		if fragment == "" {
			continue
		}

		if err := emit(fragment); err != nil {
			return err
		}
	}

	return nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func generateConfig(opts ai.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(opts.Temperature),
	}
	if opts.MaxOutputTokens > 0 {
		cfg.MaxOutputTokens = opts.MaxOutputTokens
	}
	return cfg
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	return builder.String()
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
}
