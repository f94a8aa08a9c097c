// Package searxng queries a self-hosted SearxNG instance. The instance is
// treated as a black box mapping a query to an ordered list of results; the
// client only filters out URLs that are not worth fetching.
package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"webdistill/tools/web_search/models"
)

// Domains whose pages are either not fetchable server-side or consistently
// useless for text extraction.
var blockedDomains = []string{
	"britannica.com", "youtube.com", "youtu.be",
	"instagram.com", "facebook.com", "twitter.com", "x.com",
}

type Search struct {
	Endpoint string
	Timeout  time.Duration
}

func (s Search) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	if wantsRecent(q) {
		params.Set("time_range", "day")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search api returned status %d", resp.StatusCode)
	}

	var raw struct {
		Results []struct {
			URL     string `json:"url"`
			Title   string `json:"title"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []models.Result
	for _, r := range raw.Results {
		if !fetchable(r.URL) {
			continue
		}
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, models.Result{URL: r.URL, Title: r.Title, Snippet: r.Content, Rank: len(out)})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// wantsRecent detects queries asking for fresh content.
func wantsRecent(q string) bool {
	lq := strings.ToLower(q)
	return strings.Contains(lq, "latest") || strings.Contains(lq, "current")
}

func fetchable(raw string) bool {
	if !strings.HasPrefix(raw, "https://") {
		return false
	}
	if strings.HasSuffix(strings.ToLower(raw), ".pdf") {
		return false
	}
	for _, domain := range blockedDomains {
		if strings.Contains(raw, domain) {
			return false
		}
	}
	return true
}
