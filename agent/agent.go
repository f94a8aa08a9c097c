// Package agent composes search, fetch, extraction and caching into the
// end-to-end answer pipeline.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"webdistill/cache"
	"webdistill/config"
	"webdistill/extractor"
	"webdistill/models"
	"webdistill/provider"
	"webdistill/telemetry"
	"webdistill/tools/web_fetch"
	"webdistill/tools/web_search"
)

// Orchestrator drives one request through the pipeline:
// cache lookup, then on a miss search -> fetch -> extract -> aggregate ->
// cache store. Only a search failure is request-fatal; everything else
// degrades to fewer points.
type Orchestrator struct {
	cfg       *config.Config
	logger    *log.Logger
	tele      *telemetry.Telemetry
	searcher  web_search.WebSearcher
	fetcher   web_fetch.WebFetcher
	extractor *extractor.Extractor
	cache     *cache.Cache
}

// Deps are the orchestrator's collaborators. Tests inject fakes here;
// production wiring comes from NewOrchestrator.
type Deps struct {
	Searcher  web_search.WebSearcher
	Fetcher   web_fetch.WebFetcher
	Extractor *extractor.Extractor
	Cache     *cache.Cache
}

// New creates an orchestrator from pre-built collaborators.
func New(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		logger:    logger,
		tele:      tele,
		searcher:  deps.Searcher,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		cache:     deps.Cache,
	}
}

// NewOrchestrator builds the full pipeline from configuration: the active
// LLM backend (behind a circuit breaker), the search backend, the fetcher
// and the result cache.
func NewOrchestrator(ctx context.Context, cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry) (*Orchestrator, error) {
	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	llm = provider.WithBreaker(llm, telemetry.NewLogger("LLM"))

	searcher, err := web_search.NewWebSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to create web searcher: %w", err)
	}

	fetcher, err := web_fetch.NewWebFetcher(cfg.Fetch)
	if err != nil {
		return nil, fmt.Errorf("failed to create web fetcher: %w", err)
	}

	store, err := cache.NewStore(ctx, cfg.Cache, cfg.Storage.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	return New(cfg, logger, tele, Deps{
		Searcher:  searcher,
		Fetcher:   fetcher,
		Extractor: extractor.New(llm),
		Cache:     cache.New(store, cfg.Cache.TTL, time.Now),
	}), nil
}

// Answer returns the distilled answer for query, serving from the cache
// when a fresh entry exists. It fails only when the search step itself
// cannot be completed; a query with zero usable sources succeeds with an
// empty answer.
func (o *Orchestrator) Answer(ctx context.Context, rawQuery string) (models.AggregatedAnswer, error) {
	query := models.Query{Raw: rawQuery}
	reqID := uuid.NewString()[:8]

	answer, hit, err := o.cache.GetOrCompute(ctx, query, func(ctx context.Context) (models.AggregatedAnswer, error) {
		return o.run(ctx, reqID, query)
	})
	if err != nil {
		o.tele.Requests.WithLabelValues("failure").Inc()
		return models.AggregatedAnswer{}, err
	}
	if hit {
		o.logger.Printf("[%s] cache hit for %q", reqID, query.Normalize())
		o.tele.CacheHits.Inc()
	}
	o.tele.Requests.WithLabelValues("success").Inc()
	return answer, nil
}

// run executes the pipeline for a cache miss.
func (o *Orchestrator) run(ctx context.Context, reqID string, query models.Query) (models.AggregatedAnswer, error) {
	started := time.Now()
	o.tele.CacheMisses.Inc()

	results, err := o.searcher.Search(ctx, query.Normalize(), o.cfg.Search.MaxResults)
	if err != nil {
		// Request-fatal: with no result list there is nothing to work with.
		return models.AggregatedAnswer{}, fmt.Errorf("search: %w", err)
	}
	o.logger.Printf("[%s] search returned %d results", reqID, len(results))
	if len(results) == 0 {
		return o.finish(reqID, query, nil, nil, started), nil
	}

	urls := make([]string, len(results))
	for i, r := range results {
		urls[i] = r.URL
	}

	outcomes := web_fetch.FetchAll(ctx, o.fetcher, urls, o.cfg.Fetch.Concurrency, o.cfg.Fetch.Timeout)
	for _, oc := range outcomes {
		switch {
		case oc.Err == nil:
			o.tele.FetchOutcomes.WithLabelValues("success").Inc()
		case errors.Is(oc.Err, web_fetch.ErrFetchTimeout):
			o.tele.FetchOutcomes.WithLabelValues("timeout").Inc()
			o.logger.Printf("[%s] fetch timeout, skipping %s", reqID, oc.URL)
		default:
			o.tele.FetchOutcomes.WithLabelValues("error").Inc()
			o.logger.Printf("[%s] fetch failed, skipping %s: %v", reqID, oc.URL, oc.Err)
		}
	}

	perSource := o.extractAll(ctx, reqID, outcomes)
	answer := o.finish(reqID, query, outcomes, perSource, started)
	return answer, nil
}

// extractAll condenses each successful fetch concurrently. The returned
// slice is index-aligned with outcomes; failed sources hold nil.
func (o *Orchestrator) extractAll(ctx context.Context, reqID string, outcomes []web_fetch.Outcome) [][]models.ExtractedPoint {
	perSource := make([][]models.ExtractedPoint, len(outcomes))
	sem := make(chan struct{}, o.cfg.Fetch.Concurrency)
	done := make(chan struct{})

	var pending int
	for i, oc := range outcomes {
		if oc.Err != nil || oc.Result.Text == "" {
			continue
		}
		pending++
		go func(i int, oc web_fetch.Outcome) {
			defer func() { done <- struct{}{} }()
			sem <- struct{}{}
			defer func() { <-sem }()

			points, err := o.extractor.Extract(ctx, oc.URL, oc.Result.Text, o.cfg.Answer.NumberOfPoints)
			if err != nil {
				// Source-scoped: log, count, move on.
				o.tele.ExtractionErrors.Inc()
				o.logger.Printf("[%s] extraction failed, skipping %s: %v", reqID, oc.URL, err)
				return
			}
			perSource[i] = points
		}(i, oc)
	}
	for ; pending > 0; pending-- {
		<-done
	}
	return perSource
}

// finish allocates points across sources in search rank order until the
// configured cap is reached, and records pipeline metrics.
func (o *Orchestrator) finish(reqID string, query models.Query, outcomes []web_fetch.Outcome, perSource [][]models.ExtractedPoint, started time.Time) models.AggregatedAnswer {
	maxPoints := o.cfg.Answer.NumberOfPoints
	answer := models.AggregatedAnswer{
		Query:     query.Normalize(),
		Points:    []models.ExtractedPoint{},
		CreatedAt: time.Now(),
	}
	for i := range perSource {
		took := 0
		for _, p := range perSource[i] {
			if len(answer.Points) >= maxPoints {
				break
			}
			answer.Points = append(answer.Points, p)
			took++
		}
		if took > 0 {
			answer.Sources = append(answer.Sources, outcomes[i].URL)
		}
	}

	o.tele.PointsPerAnswer.Observe(float64(len(answer.Points)))
	o.tele.PipelineSeconds.Observe(time.Since(started).Seconds())
	o.logger.Printf("[%s] aggregated %d points from %d sources in %s",
		reqID, len(answer.Points), len(answer.Sources), time.Since(started).Round(time.Millisecond))
	return answer
}
