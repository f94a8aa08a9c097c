// Package groq_provider targets Groq's OpenAI-compatible chat endpoint. Chat
// is delegated to the openai client pointed at the Groq base URL; only the
// endpoint, credentials and model names differ.
package groq_provider

import (
	"context"
	"time"

	openai_provider "webdistill/provider/openai"
)

const apiURL = "https://api.groq.com/openai/v1/chat/completions"

// Options configures the Groq client.
type Options struct {
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client wraps the openai client against Groq's endpoint.
type Client struct {
	inner *openai_provider.Client
}

// NewClient creates a new Groq client
func NewClient(opts Options) *Client {
	return &Client{
		inner: openai_provider.NewCompatibleClient("groq", apiURL, openai_provider.Options{
			APIKey:       opts.APIKey,
			Model:        opts.Model,
			Temperature:  opts.Temperature,
			MaxTokens:    opts.MaxTokens,
			Timeout:      opts.Timeout,
			MaxRetries:   opts.MaxRetries,
			RetryBackoff: opts.RetryBackoff,
		}),
	}
}

func (c *Client) Name() string { return c.inner.Name() }

// GenerateKeyPoints asks the model for at most maxPoints key points of text.
func (c *Client) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	return c.inner.GenerateKeyPoints(ctx, text, maxPoints)
}
