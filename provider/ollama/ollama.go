package ollama_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"webdistill/provider/prompt"
)

// Local inference tolerates much higher latency than a cloud API: the first
// request may block on model loading.
const defaultTimeout = 300 * time.Second

// Options configures the Ollama client.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client implements the key-point capability against a locally reachable
// Ollama server. No API key is involved.
type Client struct {
	opts       Options
	httpClient *http.Client
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewClient creates a new Ollama client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:11434"
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "ollama" }

// GenerateKeyPoints asks the local model for at most maxPoints key points.
func (c *Client) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	reqBody := generateRequest{
		Model:  c.opts.Model,
		Prompt: prompt.KeyPoints(text, maxPoints),
		Stream: false,
		Options: map[string]any{
			"temperature": c.opts.Temperature,
		},
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.opts.BaseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return prompt.ParsePoints(out.Response, maxPoints), nil
}
