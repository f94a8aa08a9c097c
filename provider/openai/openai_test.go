package openai_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func completion(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
}

func TestGenerateKeyPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("unexpected model: %q", req.Model)
		}
		_ = json.NewEncoder(w).Encode(completion("- paris is the capital\n- population 2.1 million\n- seine river"))
	}))
	defer srv.Close()

	c := NewClient(Options{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: srv.URL})
	points, err := c.GenerateKeyPoints(context.Background(), "some page", 2)
	if err != nil {
		t.Fatalf("GenerateKeyPoints: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2 (capped)", len(points))
	}
	if points[0] != "paris is the capital" {
		t.Errorf("unexpected first point: %q", points[0])
	}
}

func TestGenerateKeyPoints_RetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(completion("- ok"))
	}))
	defer srv.Close()

	c := NewClient(Options{Model: "m", BaseURL: srv.URL, MaxRetries: 2, RetryBackoff: time.Millisecond})
	points, err := c.GenerateKeyPoints(context.Background(), "text", 3)
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if len(points) != 1 || points[0] != "ok" {
		t.Fatalf("unexpected points: %v", points)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("got %d calls, want 2", got)
	}
}

func TestGenerateKeyPoints_ExhaustedRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Options{Model: "m", BaseURL: srv.URL, MaxRetries: 1, RetryBackoff: time.Millisecond})
	if _, err := c.GenerateKeyPoints(context.Background(), "text", 3); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestGenerateKeyPoints_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := NewClient(Options{Model: "m", BaseURL: srv.URL})
	if _, err := c.GenerateKeyPoints(context.Background(), "text", 3); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
