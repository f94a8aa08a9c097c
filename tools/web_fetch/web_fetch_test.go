package web_fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"webdistill/config"
	"webdistill/tools/web_fetch/models"
)

// fakeFetcher returns canned results keyed by URL; unknown URLs fail.
type fakeFetcher struct {
	mu      sync.Mutex
	delay   map[string]time.Duration
	fail    map[string]error
	active  int32
	maxSeen int32
}

func (f *fakeFetcher) Exec(ctx context.Context, url string) (models.Result, error) {
	cur := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	f.mu.Lock()
	if cur > f.maxSeen {
		f.maxSeen = cur
	}
	delay := f.delay[url]
	failErr := f.fail[url]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return models.Result{URL: url}, ctx.Err()
		}
	}
	if failErr != nil {
		return models.Result{URL: url}, failErr
	}
	return models.Result{URL: url, Text: "content of " + url}, nil
}

func TestFetchAll_OneOutcomePerURL(t *testing.T) {
	urls := []string{"https://a", "https://b", "https://c", "https://d"}
	f := &fakeFetcher{
		delay: map[string]time.Duration{},
		fail:  map[string]error{"https://b": errors.New("boom")},
	}
	outcomes := FetchAll(context.Background(), f, urls, 2, time.Second)
	if len(outcomes) != len(urls) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(urls))
	}
	for i, o := range outcomes {
		if o.URL != urls[i] {
			t.Errorf("outcome %d is for %s, want %s", i, o.URL, urls[i])
		}
	}
	if outcomes[1].Err == nil {
		t.Error("expected failure outcome for https://b")
	}
	if !errors.Is(outcomes[1].Err, ErrFetchError) {
		t.Errorf("failure not classified as ErrFetchError: %v", outcomes[1].Err)
	}
}

func TestFetchAll_FailureIsolation(t *testing.T) {
	urls := []string{"https://slow", "https://ok1", "https://ok2"}
	f := &fakeFetcher{
		delay: map[string]time.Duration{"https://slow": 500 * time.Millisecond},
		fail:  map[string]error{},
	}
	outcomes := FetchAll(context.Background(), f, urls, 3, 50*time.Millisecond)
	if !errors.Is(outcomes[0].Err, ErrFetchTimeout) {
		t.Errorf("slow fetch not classified as timeout: %v", outcomes[0].Err)
	}
	for _, o := range outcomes[1:] {
		if o.Err != nil {
			t.Errorf("sibling fetch failed: %v", o.Err)
		}
		if o.Result.Text == "" {
			t.Errorf("sibling fetch lost its content: %+v", o)
		}
	}
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	var urls []string
	delays := map[string]time.Duration{}
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("https://u%d", i)
		urls = append(urls, u)
		delays[u] = 20 * time.Millisecond
	}
	f := &fakeFetcher{delay: delays, fail: map[string]error{}}
	FetchAll(context.Background(), f, urls, 3, time.Second)
	if f.maxSeen > 3 {
		t.Errorf("observed %d concurrent fetches, bound is 3", f.maxSeen)
	}
}

func TestFetchAll_AllFail(t *testing.T) {
	urls := []string{"https://a", "https://b"}
	f := &fakeFetcher{
		delay: map[string]time.Duration{},
		fail: map[string]error{
			"https://a": errors.New("refused"),
			"https://b": errors.New("reset"),
		},
	}
	outcomes := FetchAll(context.Background(), f, urls, 2, time.Second)
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Err == nil {
			t.Errorf("expected failure for %s", o.URL)
		}
	}
}

func TestFetchAll_EmptyInput(t *testing.T) {
	f := &fakeFetcher{delay: map[string]time.Duration{}, fail: map[string]error{}}
	outcomes := FetchAll(context.Background(), f, nil, 2, time.Second)
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty input", len(outcomes))
	}
}

func TestNewWebFetcher(t *testing.T) {
	if _, err := NewWebFetcher(config.FetchConfig{Fetcher: "http", Concurrency: 2, Timeout: time.Second}); err != nil {
		t.Errorf("http fetcher: %v", err)
	}
	if _, err := NewWebFetcher(config.FetchConfig{Fetcher: "chromedp", Concurrency: 2, Timeout: time.Second}); err != nil {
		t.Errorf("chromedp fetcher: %v", err)
	}
	if _, err := NewWebFetcher(config.FetchConfig{Fetcher: "curl"}); !errors.Is(err, ErrUnsupportedFetcher) {
		t.Errorf("expected ErrUnsupportedFetcher, got %v", err)
	}
}
