// Package fuse implements the merge chain: normalization of raw
// provider payloads, cross-provider deduplication, composite relevance
// scoring, and aggregate quality assessment.
package fuse

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/answer-engine/internal/model"
)

const (
	placeholderTitle   = "Untitled result"
	placeholderSnippet = "No description available."
)

// RawResult is a provider result before normalization. Score is nil
// when the provider supplies no native relevance signal.
type RawResult struct {
	Title       string
	URL         string
	Snippet     string
	Score       *float64
	PublishedAt *time.Time
	ImageURL    string
}

// Normalize maps a raw provider result into the canonical schema.
// Missing title/snippet get fixed placeholders; the domain is parsed
// from the URL; a rank-based default score is used when the provider
// supplies none. Rank is the zero-based result index within the
// provider's response.
func Normalize(raw RawResult, rank int, provider string) model.SearchResult {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = placeholderTitle
	}
	snippet := strings.TrimSpace(raw.Snippet)
	if snippet == "" {
		snippet = placeholderSnippet
	}

	var score float64
	if raw.Score != nil {
		score = model.ClampScore(*raw.Score)
	} else {
		score = rankScore(rank)
	}

	return model.SearchResult{
		ID:          uuid.New().String(),
		Title:       title,
		URL:         raw.URL,
		Snippet:     snippet,
		Provider:    provider,
		Relevance:   score,
		PublishedAt: raw.PublishedAt,
		ImageURL:    raw.ImageURL,
		Domain:      ExtractDomain(raw.URL),
	}
}

// rankScore is the default relevance heuristic: a decreasing function
// of result position, floored so late results still carry some weight.
func rankScore(rank int) float64 {
	s := 95 - 5*float64(rank)
	if s < 30 {
		s = 30
	}
	return s
}

// ExtractDomain returns the lowercased hostname of rawURL with any
// leading "www." stripped. Returns "" for unparseable URLs.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
