package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"

	"webdistill/tools/web_fetch/models"
)

// MaxBytes caps how much of a response body is read. Pages larger than this
// are truncated, not failed.
const MaxBytes = 2 << 20

type Fetch struct {
	MaxChars int
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

func (f *Fetch) Exec(ctx context.Context, rawURL string) (models.Result, error) {
	if strings.TrimSpace(rawURL) == "" {
		return models.Result{}, errors.New("invalid url")
	}
	t0 := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return models.Result{URL: rawURL}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/113.0.0.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Result{URL: rawURL}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Result{URL: rawURL, Status: resp.StatusCode}, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBytes))
	if err != nil {
		return models.Result{URL: rawURL, Status: resp.StatusCode}, err
	}

	contentType := resp.Header.Get("Content-Type")
	text, title := extractText(string(body), contentType, rawURL)
	text = truncate(text, f.MaxChars)

	return models.Result{
		URL:         rawURL,
		Title:       title,
		Text:        strings.TrimSpace(text),
		ContentType: contentType,
		Status:      resp.StatusCode,
		FetchMS:     int(time.Since(t0) / time.Millisecond),
	}, nil
}

// extractText reduces a response body to readable text. Non-text content
// yields empty text rather than an error; the extraction stage then produces
// no points for the source.
func extractText(body, contentType, rawURL string) (text, title string) {
	switch {
	case strings.Contains(contentType, "text/html"), contentType == "":
		article, err := readability.FromReader(strings.NewReader(body), mustParseURL(rawURL))
		if err != nil {
			return "", ""
		}
		return article.TextContent, strings.TrimSpace(article.Title)
	case strings.HasPrefix(contentType, "text/"):
		return body, ""
	default:
		return "", ""
	}
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}

// truncate caps s at max bytes without bisecting a multibyte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
