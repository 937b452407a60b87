package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

// GenAIClient is the concrete Client backed by Google's genai SDK (Gemini).
// Retries use an exponential backoff policy; once they are exhausted, Call
// returns an error wrapping ErrLLMUnavailable. When the API omits usage
// metadata, the token count falls back to the character heuristic.
type GenAIClient struct {
	client      *genai.Client
	maxRetries  int
	initialWait time.Duration
}

// NewGenAIClient constructs a GenAIClient for the given API key, the same
// credential shape the embedding engine in the corpus resolves per agent.
func NewGenAIClient(ctx context.Context, apiKey string, maxRetries int, initialWait time.Duration) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is empty", ErrLLMUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, maxRetries: maxRetries, initialWait: initialWait}, nil
}

// APIKeyFromEnv resolves an API key from the named environment variable,
// the per-agent credential indirection described in the configuration layer.
func APIKeyFromEnv(envVar string) string {
	if envVar == "" {
		envVar = "GOOGLE_API_KEY"
	}
	return os.Getenv(envVar)
}

// Call sends prompt to the configured model and returns its text along with
// a token count. Retries transient failures with exponential backoff.
func (c *GenAIClient) Call(ctx context.Context, prompt, agentName string, opts Options) (string, int, error) {
	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	temp := float32(opts.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	var text string
	var tokens int

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.retryInterval()),
	), uint64(c.retries()))

	op := func() error {
		result, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
		if err != nil {
			return fmt.Errorf("%s: genai call failed: %w", agentName, err)
		}
		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return fmt.Errorf("%s: %w", agentName, ErrLLMUnavailable)
		}
		var out string
		for _, part := range result.Candidates[0].Content.Parts {
			out += part.Text
		}
		text = out
		if result.UsageMetadata != nil && result.UsageMetadata.TotalTokenCount > 0 {
			tokens = int(result.UsageMetadata.TotalTokenCount)
		} else {
			tokens = CharHeuristicTokens(out)
		}
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		if !errors.Is(err, ErrLLMUnavailable) {
			err = fmt.Errorf("%w: %w", ErrLLMUnavailable, err)
		}
		return "", 0, err
	}
	return text, tokens, nil
}

func (c *GenAIClient) retries() int {
	if c.maxRetries <= 0 {
		return 3
	}
	return c.maxRetries
}

func (c *GenAIClient) retryInterval() time.Duration {
	if c.initialWait <= 0 {
		return 500 * time.Millisecond
	}
	return c.initialWait
}
