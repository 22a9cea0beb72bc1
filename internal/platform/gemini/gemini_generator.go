package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"google.golang.org/genai"

	"github.com/jmickel/wayfarer-api/internal/config"
	"github.com/jmickel/wayfarer-api/internal/generation"
	"github.com/jmickel/wayfarer-api/internal/quota"
	"github.com/jmickel/wayfarer-api/internal/recovery"
)

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to generate travel itineraries from prompt text.
//
// The generator makes exactly one upstream call per GenerateItinerary
// invocation. Retry policy lives with the caller, which owns the attempt
// budget for the whole generation pipeline.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// quota memoizes responses and enforces the daily request ceiling
	quota *quota.Tracker

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string

	// validate checks recovered payloads before memoization
	validate *validator.Validate
}

// NewGeminiGenerator creates a new instance of GeminiGenerator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and sampling settings
//   - tracker: Quota tracker for response memoization and daily call limits
//
// Returns:
//   - A properly initialized GeminiGenerator or an error if initialization fails
func NewGeminiGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
	tracker *quota.Tracker,
) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if tracker == nil {
		return nil, errors.New("quota tracker cannot be nil")
	}

	// Validate configuration
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:   logger.With(slog.String("component", "gemini_generator")),
		config:   cfg,
		quota:    tracker,
		client:   client,
		model:    cfg.ModelName,
		validate: validator.New(),
	}, nil
}

// Ensure GeminiGenerator implements generation.Generator interface
var _ generation.Generator = (*GeminiGenerator)(nil)

// GenerateItinerary produces the raw model response for the given prompt.
//
// The cache is consulted before the quota: a memoized response is returned
// without consuming a daily unit or touching the network. On a cache miss
// the quota is consumed first, so a rejected request never reaches the API.
//
// The returned text is the model's output verbatim. It is frequently not
// valid JSON; callers run it through the recovery pipeline.
func (g *GeminiGenerator) GenerateItinerary(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	if raw, ok := g.quota.Lookup(prompt); ok {
		g.logger.InfoContext(ctx, "serving generation response from cache",
			"prompt_length", len(prompt))
		return raw, nil
	}

	if err := g.quota.Consume(); err != nil {
		g.logger.WarnContext(ctx, "generation request rejected by quota",
			"error", err)
		return "", err
	}

	g.logger.InfoContext(ctx, "making Gemini API call",
		"model", g.model,
		"prompt_length", len(prompt))

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(g.config.Temperature)),
	}
	if g.config.MaxOutputTokens > 0 {
		genConfig.MaxOutputTokens = int32(g.config.MaxOutputTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genConfig)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrEmptyResponse)
	}

	// Memoize only responses the orchestrator will accept. Caching a
	// response that fails schema validation would replay the same failure
	// on every retry and every future identical request.
	if cacheableResponse(g.validate, text) {
		g.quota.Store(prompt, text)
	} else {
		g.logger.WarnContext(ctx, "response not memoized, fails schema after recovery",
			"response_length", len(text))
	}

	g.logger.InfoContext(ctx, "Gemini API call successful",
		"response_length", len(text))
	return text, nil
}

// cacheableResponse reports whether raw recovers into a schema-valid
// itinerary payload.
func cacheableResponse(validate *validator.Validate, raw string) bool {
	payload, err := recovery.Recover(raw)
	if err != nil {
		return false
	}
	return validate.Struct(payload) == nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var text string
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}
