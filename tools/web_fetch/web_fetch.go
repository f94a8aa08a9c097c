package web_fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"webdistill/config"
	chromedp_fetch "webdistill/tools/web_fetch/chromedp"
	"webdistill/tools/web_fetch/httpfetch"
	"webdistill/tools/web_fetch/models"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 20000
)

var (
	// ErrFetchTimeout is returned when a single fetch exceeds its per-fetch
	// deadline. Source-scoped: siblings are unaffected.
	ErrFetchTimeout = errors.New("fetch timeout")
	// ErrFetchError covers network and parse failures for a single fetch.
	ErrFetchError = errors.New("fetch error")

	ErrUnsupportedFetcher = errors.New("unsupported fetcher type")
)

// WebFetcher retrieves and extracts the content of one URL.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	HTTPFetcherType     FetcherType = "http"
	ChromedpFetcherType FetcherType = "chromedp"
)

func NewWebFetcher(cfg config.FetchConfig) (WebFetcher, error) {
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	var fetcher WebFetcher
	switch FetcherType(cfg.Fetcher) {
	case HTTPFetcherType:
		fetcher = &httpfetch.Fetch{MaxChars: maxChars}
	case ChromedpFetcherType:
		fetcher = &chromedp_fetch.Fetch{MaxChars: maxChars}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFetcher, cfg.Fetcher)
	}

	if cfg.RPS > 0 {
		fetcher = &throttled{inner: fetcher, limiter: rate.NewLimiter(rate.Limit(cfg.RPS), 1)}
	}
	return fetcher, nil
}

// throttled caps outbound request rate across all concurrent fetches.
type throttled struct {
	inner   WebFetcher
	limiter *rate.Limiter
}

func (t *throttled) Exec(ctx context.Context, url string) (models.Result, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return models.Result{URL: url}, err
	}
	return t.inner.Exec(ctx, url)
}

// Outcome is the result of fetching one URL. Err is nil on success. FetchAll
// produces exactly one Outcome per input URL.
type Outcome struct {
	URL    string
	Result models.Result
	Err    error
}

// FetchAll retrieves all URLs concurrently. Concurrency is bounded by
// maxConcurrency; each fetch gets its own perFetchTimeout and fails alone,
// so a slow or broken fetch never blocks or fails its siblings. Outcomes
// are returned in input order.
func FetchAll(ctx context.Context, fetcher WebFetcher, urls []string, maxConcurrency int, perFetchTimeout time.Duration) []Outcome {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if perFetchTimeout <= 0 {
		perFetchTimeout = DefaultTimeout
	}

	outcomes := make([]Outcome, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, perFetchTimeout)
			defer cancel()

			result, err := fetcher.Exec(fctx, u)
			outcomes[i] = Outcome{URL: u, Result: result, Err: classify(fctx, err)}
			return nil // failures are per-outcome, never group-fatal
		})
	}
	_ = g.Wait()
	return outcomes
}

func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrFetchTimeout, err)
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return fmt.Errorf("%w: %v", ErrFetchTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrFetchError, err)
}
