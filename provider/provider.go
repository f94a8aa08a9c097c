package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"webdistill/config"
	groq_provider "webdistill/provider/groq"
	ollama_provider "webdistill/provider/ollama"
	openai_provider "webdistill/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Ollama Client = "ollama"
	Groq   Client = "groq"
)

var (
	// ErrBackendUnavailable covers connection and auth failures against the
	// active backend. Extraction treats it as scoped to one source.
	ErrBackendUnavailable = errors.New("llm backend unavailable")
	// ErrBackendTimeout is returned when the backend does not answer within
	// the configured deadline.
	ErrBackendTimeout = errors.New("llm backend timeout")
)

// Provider is the single capability the pipeline needs from any LLM backend:
// condense text into at most maxPoints key points.
type Provider interface {
	GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error)
	Name() string
}

// NewProvider creates the active LLM client from configuration. Exactly one
// backend flag must be set; config.Validate enforces that before we get here.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	var inner Provider
	switch {
	case cfg.UseOpenAI:
		inner = openai_provider.NewClient(openai_provider.Options{
			APIKey:       cfg.OpenAI.APIKey,
			Model:        cfg.OpenAI.Model,
			Temperature:  cfg.OpenAI.Temperature,
			MaxTokens:    cfg.OpenAI.MaxTokens,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		})
	case cfg.UseOllama:
		inner = ollama_provider.NewClient(ollama_provider.Options{
			BaseURL:     cfg.Ollama.BaseURL,
			Model:       cfg.Ollama.Model,
			Temperature: cfg.Ollama.Temperature,
			Timeout:     cfg.Timeout,
		})
	case cfg.UseGroq:
		inner = groq_provider.NewClient(groq_provider.Options{
			APIKey:       cfg.Groq.APIKey,
			Model:        cfg.Groq.Model,
			Temperature:  cfg.Groq.Temperature,
			MaxTokens:    cfg.Groq.MaxTokens,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: cfg.RetryBackoff,
		})
	default:
		return nil, errors.New("no llm backend selected")
	}
	return classified{inner: inner}, nil
}

// classified maps transport-level errors from a backend onto the two
// sentinel errors callers branch on.
type classified struct {
	inner Provider
}

func (c classified) Name() string { return c.inner.Name() }

func (c classified) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	points, err := c.inner.GenerateKeyPoints(ctx, text, maxPoints)
	if err != nil {
		return nil, classify(c.inner.Name(), err)
	}
	return points, nil
}

func classify(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", name, ErrBackendTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%s: %w: %v", name, ErrBackendTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", name, ErrBackendUnavailable, err)
}
