package fuse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Placeholders(t *testing.T) {
	r := Normalize(RawResult{URL: "https://example.com/page"}, 0, "brave")

	assert.Equal(t, "Untitled result", r.Title)
	assert.Equal(t, "No description available.", r.Snippet)
	assert.Equal(t, "example.com", r.Domain)
	assert.Equal(t, "brave", r.Provider)
	assert.NotEmpty(t, r.ID)
}

func TestNormalize_RankScore(t *testing.T) {
	tests := []struct {
		rank int
		want float64
	}{
		{0, 95},
		{1, 90},
		{5, 70},
		{13, 30}, // floored
		{50, 30},
	}
	for _, tt := range tests {
		r := Normalize(RawResult{Title: "t", URL: "https://a.com", Snippet: "s"}, tt.rank, "serper")
		assert.Equal(t, tt.want, r.Relevance, "rank %d", tt.rank)
	}
}

func TestNormalize_NativeScoreClamped(t *testing.T) {
	over := 140.0
	under := -10.0

	r := Normalize(RawResult{Title: "t", URL: "https://a.com", Score: &over}, 0, "tavily")
	assert.Equal(t, 100.0, r.Relevance)

	r = Normalize(RawResult{Title: "t", URL: "https://a.com", Score: &under}, 0, "tavily")
	assert.Equal(t, 0.0, r.Relevance)
}

func TestNormalize_PreservesMetadata(t *testing.T) {
	published := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	r := Normalize(RawResult{
		Title:       "Go 1.25 released",
		URL:         "https://go.dev/blog/go1.25",
		Snippet:     "Release notes",
		PublishedAt: &published,
		ImageURL:    "https://go.dev/img.png",
	}, 2, "brave")

	assert.Equal(t, "go.dev", r.Domain)
	assert.Equal(t, &published, r.PublishedAt)
	assert.Equal(t, "https://go.dev/img.png", r.ImageURL)
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.Example.com/path", "example.com"},
		{"https://docs.python.org/3/", "docs.python.org"},
		{"://missing-scheme", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractDomain(tt.url), tt.url)
	}
}
