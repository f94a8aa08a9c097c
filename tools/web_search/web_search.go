package web_search

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"webdistill/config"
	"webdistill/tools/web_search/models"
	"webdistill/tools/web_search/searxng"
	"webdistill/tools/web_search/serper"
)

var (
	// ErrSearchUnavailable is returned when the backend is unreachable or
	// answers with a non-success status. Request-fatal: there is nothing to
	// fetch without results.
	ErrSearchUnavailable = errors.New("search backend unavailable")
	// ErrSearchTimeout is returned when no response arrives within the
	// configured deadline.
	ErrSearchTimeout = errors.New("search backend timeout")

	ErrUnsupportedProvider = errors.New("unsupported search provider")
)

// WebSearcher issues a single query and returns an ordered sequence of
// candidate results. No retries at this layer.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SearxNGProvider Provider = "searxng"
	SerperProvider  Provider = "serper"
)

func NewWebSearcher(cfg config.SearchConfig) (WebSearcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	switch Provider(cfg.Backend) {
	case SearxNGProvider:
		return classified{searxng.Search{Endpoint: cfg.Endpoint, Timeout: timeout}}, nil
	case SerperProvider:
		return classified{serper.Search{ApiKey: cfg.APIKey, Timeout: timeout}}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Backend)
	}
}

// classified maps backend errors onto the sentinel taxonomy.
type classified struct {
	inner WebSearcher
}

func (c classified) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	results, err := c.inner.Search(ctx, q, k)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrSearchTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	return results, nil
}
