// Package extractor condenses fetched page content into key points through
// the active LLM backend. Failures are scoped to one source.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"webdistill/models"
	"webdistill/provider"
)

// ErrExtractionFailed is returned when the backend call errors or produces
// unusable output for one source. It never aborts sibling extractions.
var ErrExtractionFailed = errors.New("extraction failed")

type Extractor struct {
	llm provider.Provider
}

func New(llm provider.Provider) *Extractor {
	return &Extractor{llm: llm}
}

// Extract reduces content from sourceURL into at most maxPoints key points.
// Empty or non-text content yields an empty slice and no error.
func (e *Extractor) Extract(ctx context.Context, sourceURL, content string, maxPoints int) ([]models.ExtractedPoint, error) {
	content = strings.TrimSpace(content)
	if content == "" || !utf8.ValidString(content) {
		return nil, nil
	}

	lines, err := e.llm.GenerateKeyPoints(ctx, content, maxPoints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	points := make([]models.ExtractedPoint, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		points = append(points, models.ExtractedPoint{SourceURL: sourceURL, Text: line})
		if len(points) >= maxPoints {
			break
		}
	}
	return points, nil
}
