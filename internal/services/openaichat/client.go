package openaichat

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client wraps the OpenAI chat completion API behind a Generate call.
type Client struct {
	api   openai.Client
	model string
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openaichat: api key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{api: openai.NewClient(opts...), model: model}, nil
}

// Generate issues a single chat completion for the prompt and returns
// the model's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("openaichat generate: prompt required")
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openaichat generate: empty choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openaichat generate: empty completion content")
	}
	return content, nil
}
