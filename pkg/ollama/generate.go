package ollama

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hikaru/emojitale/internal/observability"
)

const (
	defaultWordCount   = 150
	defaultTemperature = 1.2
)

// GenerateOptions tune one story generation call. Zero values fall back
// to the client defaults.
type GenerateOptions struct {
	Model       string
	WordCount   int
	Temperature float64
}

// GenerateStory turns a drawn emoji set into a short story. The target
// model is validated against the server's installed models first: an
// unknown model is ErrInvalidModel and not worth retrying, while
// transport and server-side failures wrap ErrUnavailable.
func (c *Client) GenerateStory(ctx context.Context, emojis []string, opts GenerateOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	wordCount := opts.WordCount
	if wordCount <= 0 {
		wordCount = defaultWordCount
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}

	reqID, _ := gonanoid.New(8)
	logger := c.logger.With().Str("request_id", reqID).Str("model", model).Logger()

	available, err := c.Models(ctx)
	if err != nil {
		return "", err
	}
	if !slices.Contains(available, model) {
		return "", fmt.Errorf("%w: %q (available: %s)", ErrInvalidModel, model, strings.Join(available, ", "))
	}

	prompt := storyPrompt(emojis, wordCount)

	start := time.Now()
	story, err := c.complete(ctx, model, prompt, temperature)
	observability.RecordGeneration(time.Since(start))
	if err != nil {
		observability.RecordGenerationError(errorReason(err))
		logger.Error().Err(err).Msg("Story generation failed")
		return "", err
	}

	logger.Info().
		Int("emojis", len(emojis)).
		Int("chars", len(story)).
		Dur("elapsed", time.Since(start)).
		Msg("Story generated")

	return story, nil
}

// storyPrompt builds the generation prompt for a drawn emoji set.
func storyPrompt(emojis []string, wordCount int) string {
	return fmt.Sprintf(
		"Write a creative story with a beginning, middle, and end, inspired by these emojis: %s. "+
			"The story should be about %d words long.",
		strings.Join(emojis, " "), wordCount,
	)
}

// complete runs one chat completion through the server's
// OpenAI-compatible endpoint.
func (c *Client) complete(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	gen := openai.NewClient(
		// Trailing slash matters: the SDK resolves endpoint paths
		// relative to the base URL.
		option.WithBaseURL(c.baseURL+"/v1/"),
		// Ollama ignores credentials but the SDK requires one.
		option.WithAPIKey("ollama"),
		option.WithHTTPClient(c.httpClient),
		// Retry policy belongs to the caller, keyed off IsRetryable.
		option.WithMaxRetries(0),
	)

	resp, err := gen.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", classifyGenerationError(err, model)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", ErrUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// classifyGenerationError maps completion failures onto the package's
// retryable/non-retryable sentinels.
func classifyGenerationError(err error, model string) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 404:
			return fmt.Errorf("%w: %q not found, ensure the model is pulled", ErrInvalidModel, model)
		case apierr.StatusCode >= 500:
			return fmt.Errorf("%w: server error %d", ErrUnavailable, apierr.StatusCode)
		default:
			return fmt.Errorf("generation failed with status %d: %w", apierr.StatusCode, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// errorReason labels a generation failure for metrics.
func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidModel):
		return "invalid_model"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}
