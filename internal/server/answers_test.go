package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"webdistill/models"
	"webdistill/tools/web_search"
)

type fakeAnswerer struct {
	answer models.AggregatedAnswer
	err    error
	gotQ   string
}

func (f *fakeAnswerer) Answer(ctx context.Context, query string) (models.AggregatedAnswer, error) {
	f.gotQ = query
	if f.err != nil {
		return models.AggregatedAnswer{}, f.err
	}
	return f.answer, nil
}

func serve(t *testing.T, fake *fakeAnswerer, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := newEcho()
	(&AnswerHandler{Answerer: fake}).Register(e.Group("/api"))
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnswerEndpoint(t *testing.T) {
	fake := &fakeAnswerer{answer: models.AggregatedAnswer{
		Query: "go generics",
		Points: []models.ExtractedPoint{
			{SourceURL: "https://a.example/1", Text: "a1"},
			{SourceURL: "https://b.example/2", Text: "b1"},
		},
		Sources:   []string{"https://a.example/1", "https://b.example/2"},
		CreatedAt: time.Now(),
	}}

	rec := serve(t, fake, "/api/answer?q=go+generics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if fake.gotQ != "go generics" {
		t.Errorf("handler passed query %q", fake.gotQ)
	}

	var resp answerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Points) != 2 || resp.Points[0].Text != "a1" {
		t.Errorf("points = %+v", resp.Points)
	}
	if len(resp.Sources) != 2 {
		t.Errorf("sources = %v", resp.Sources)
	}
}

func TestAnswerEndpointEmptyAnswer(t *testing.T) {
	fake := &fakeAnswerer{answer: models.AggregatedAnswer{Query: "obscure", CreatedAt: time.Now()}}

	rec := serve(t, fake, "/api/answer?q=obscure")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for empty answer", rec.Code)
	}
	var resp answerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Points == nil || resp.Sources == nil {
		t.Errorf("empty answer should serialize with empty arrays, got %s", rec.Body.String())
	}
}

func TestAnswerEndpointMissingQuery(t *testing.T) {
	rec := serve(t, &fakeAnswerer{}, "/api/answer")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnswerEndpointErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("search: %w", web_search.ErrSearchUnavailable), http.StatusBadGateway},
		{fmt.Errorf("search: %w", web_search.ErrSearchTimeout), http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := serve(t, &fakeAnswerer{err: tc.err}, "/api/answer?q=x")
		if rec.Code != tc.want {
			t.Errorf("err %v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("error body not JSON: %s", rec.Body.String())
		}
		if _, ok := body["error"]; !ok {
			t.Errorf("error body missing error field: %s", rec.Body.String())
		}
	}
}
