package models

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// Query is a user question. Its identity for caching purposes is the
// normalized form, not the raw string.
type Query struct {
	Raw string `json:"raw"`
}

// Normalize returns the canonical form of the query: trimmed, case-folded,
// inner whitespace collapsed to single spaces.
func (q Query) Normalize() string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(q.Raw))), " ")
}

// Key returns the cache key for the query.
func (q Query) Key() string {
	sum := sha1.Sum([]byte(q.Normalize()))
	return hex.EncodeToString(sum[:])
}

// ExtractedPoint is one condensed statement derived from a single source.
type ExtractedPoint struct {
	SourceURL string `json:"source_url"`
	Text      string `json:"text"`
}

// AggregatedAnswer is the distilled result for one query: at most the
// configured number of key points, allocated across sources in search rank
// order. It is the unit stored in the result cache.
type AggregatedAnswer struct {
	Query     string           `json:"query"`
	Points    []ExtractedPoint `json:"points"`
	Sources   []string         `json:"sources"`
	CreatedAt time.Time        `json:"created_at"`
}

// CacheEntry is one cached answer. Entries are replaced wholesale on
// recomputation, never mutated in place.
type CacheEntry struct {
	Key       string           `json:"key"`
	Value     AggregatedAnswer `json:"value"`
	CreatedAt time.Time        `json:"created_at"`
	TTL       time.Duration    `json:"ttl"`
}

// Expired reports whether the entry is stale at time now.
func (e CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.CreatedAt) > e.TTL
}
