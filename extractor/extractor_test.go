package extractor

import (
	"context"
	"errors"
	"testing"

	"webdistill/provider"
)

type fakeLLM struct {
	points []string
	err    error
	calls  int
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) GenerateKeyPoints(ctx context.Context, text string, maxPoints int) ([]string, error) {
	f.calls++
	return f.points, f.err
}

func TestExtract(t *testing.T) {
	llm := &fakeLLM{points: []string{"fact one", "fact two"}}
	e := New(llm)
	points, err := e.Extract(context.Background(), "https://src", "page content", 5)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	for _, p := range points {
		if p.SourceURL != "https://src" {
			t.Errorf("point not attributed to source: %+v", p)
		}
	}
}

func TestExtract_CapsAtMaxPoints(t *testing.T) {
	llm := &fakeLLM{points: []string{"a", "b", "c", "d"}}
	e := New(llm)
	points, err := e.Extract(context.Background(), "https://src", "content", 3)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(points) != 3 {
		t.Errorf("got %d points, want 3", len(points))
	}
}

func TestExtract_EmptyContentIsNotAFailure(t *testing.T) {
	llm := &fakeLLM{points: []string{"should not be called"}}
	e := New(llm)
	points, err := e.Extract(context.Background(), "https://src", "   ", 3)
	if err != nil {
		t.Fatalf("empty content must not fail: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points for empty content, got %v", points)
	}
	if llm.calls != 0 {
		t.Error("backend called for empty content")
	}
}

func TestExtract_NonTextContentIsNotAFailure(t *testing.T) {
	e := New(&fakeLLM{})
	points, err := e.Extract(context.Background(), "https://src", string([]byte{0xff, 0xfe, 0xfd}), 3)
	if err != nil {
		t.Fatalf("non-text content must not fail: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points, got %v", points)
	}
}

func TestExtract_BackendErrorIsSourceScoped(t *testing.T) {
	llm := &fakeLLM{err: provider.ErrBackendTimeout}
	e := New(llm)
	_, err := e.Extract(context.Background(), "https://src", "content", 3)
	if !errors.Is(err, ErrExtractionFailed) {
		t.Errorf("backend error not wrapped as ErrExtractionFailed: %v", err)
	}
}
