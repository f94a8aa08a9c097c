package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"webdistill/provider/prompt"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Options configures the OpenAI client.
type Options struct {
	APIKey       string
	Model        string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// BaseURL overrides the chat completions endpoint. Used by
	// OpenAI-compatible backends (groq, and ollama's /v1 shim).
	BaseURL string
	name    string
}

// Client implements the key-point capability using OpenAI's chat API
type Client struct {
	opts       Options
	apiURL     string
	httpClient *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// request represents a request to the OpenAI API
type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new OpenAI client
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryBackoff == 0 {
		opts.RetryBackoff = 300 * time.Millisecond
	}
	apiURL := opts.BaseURL
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if opts.name == "" {
		opts.name = "openai"
	}
	return &Client{
		opts:       opts,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// NewCompatibleClient creates a client for an OpenAI-compatible endpoint
// under a different provider name.
func NewCompatibleClient(name, baseURL string, opts Options) *Client {
	opts.BaseURL = baseURL
	opts.name = name
	return NewClient(opts)
}

func (c *Client) Name() string { return c.opts.name }

// GenerateKeyPoints asks the model for at most maxPoints key points of text.
func (c *Client) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	messages := []Message{
		{Role: "user", Content: prompt.KeyPoints(text, maxPoints)},
	}
	raw, err := c.sendRequest(ctx, messages)
	if err != nil {
		return nil, err
	}
	return prompt.ParsePoints(raw, maxPoints), nil
}

// sendRequest sends a chat completion request, retrying transient failures
// with doubling backoff.
func (c *Client) sendRequest(ctx context.Context, messages []Message) (string, error) {
	requestBody := request{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	tries := c.opts.MaxRetries + 1
	for attempt := 0; attempt < tries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.opts.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
		}

		content, err := c.do(req)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if attempt < tries-1 {
			select {
			case <-time.After(c.opts.RetryBackoff * time.Duration(1<<attempt)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}

func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(b))
	}

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return openaiResp.Choices[0].Message.Content, nil
}
