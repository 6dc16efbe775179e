package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/answer-engine/internal/resilience"
	"github.com/sells-group/answer-engine/pkg/brave"
	"github.com/sells-group/answer-engine/pkg/serper"
	"github.com/sells-group/answer-engine/pkg/tavily"
)

type fakeBrave struct {
	resp  *brave.WebSearchResponse
	errs  []error
	calls int
}

func (f *fakeBrave) WebSearch(ctx context.Context, query string, count int) (*brave.WebSearchResponse, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.resp, nil
}

func TestBraveProvider_Normalizes(t *testing.T) {
	client := &fakeBrave{resp: &brave.WebSearchResponse{
		Web: brave.WebResults{Results: []brave.Result{
			{Title: "Go", URL: "https://go.dev", Description: "The Go language", PageAge: "2026-01-05T00:00:00"},
			{URL: "https://www.example.com/bare"},
		}},
	}}

	p := NewBraveProvider(client)
	results, err := p.Search(context.Background(), "go", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "brave", results[0].Provider)
	assert.Equal(t, "go.dev", results[0].Domain)
	assert.Equal(t, 95.0, results[0].Relevance, "rank 0 default score")
	require.NotNil(t, results[0].PublishedAt)
	assert.Equal(t, 2026, results[0].PublishedAt.Year())

	assert.Equal(t, "Untitled result", results[1].Title)
	assert.Equal(t, "example.com", results[1].Domain)
	assert.Equal(t, 90.0, results[1].Relevance, "rank 1 default score")
	assert.Nil(t, results[1].PublishedAt)
}

func TestBraveProvider_RetriesTransientOnce(t *testing.T) {
	client := &fakeBrave{
		resp: &brave.WebSearchResponse{},
		errs: []error{resilience.Transient(errors.New("503"), 503)},
	}

	p := NewBraveProvider(client)
	_, err := p.Search(context.Background(), "go", 10)

	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestBraveProvider_PermanentErrorNotRetried(t *testing.T) {
	client := &fakeBrave{errs: []error{errors.New("invalid key")}}

	p := NewBraveProvider(client)
	_, err := p.Search(context.Background(), "go", 10)

	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

type fakeSerper struct {
	resp *serper.SearchResponse
}

func (f *fakeSerper) Search(ctx context.Context, req serper.SearchRequest) (*serper.SearchResponse, error) {
	return f.resp, nil
}

func TestSerperProvider_Normalizes(t *testing.T) {
	client := &fakeSerper{resp: &serper.SearchResponse{
		Organic: []serper.OrganicResult{
			{Title: "Python errors", Link: "https://docs.python.org/3/tutorial/errors.html", Snippet: "Errors", Date: "Jan 5, 2026", Position: 1},
		},
	}}

	p := NewSerperProvider(client)
	results, err := p.Search(context.Background(), "python", 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "serper", results[0].Provider)
	assert.Equal(t, "docs.python.org", results[0].Domain)
	require.NotNil(t, results[0].PublishedAt)
	assert.Equal(t, time.January, results[0].PublishedAt.Month())
}

type fakeTavily struct {
	resp *tavily.SearchResponse
}

func (f *fakeTavily) Search(ctx context.Context, req tavily.SearchRequest) (*tavily.SearchResponse, error) {
	return f.resp, nil
}

func TestTavilyProvider_ScalesNativeScore(t *testing.T) {
	client := &fakeTavily{resp: &tavily.SearchResponse{
		Results: []tavily.Result{
			{Title: "Quantum", URL: "https://wikipedia.org/Quantum", Content: "Overview", Score: 0.97, PublishedDate: "2026-03-01"},
			{Title: "Other", URL: "https://a.com", Content: "x", Score: 1.4},
		},
	}}

	p := NewTavilyProvider(client)
	results, err := p.Search(context.Background(), "quantum", 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 97.0, results[0].Relevance, 1e-9)
	assert.Equal(t, 100.0, results[1].Relevance, "native scores above 1 clamp to 100")
}

func TestParseDate(t *testing.T) {
	assert.Nil(t, parseDate("", "2006-01-02"))
	assert.Nil(t, parseDate("garbage", "2006-01-02"))
	got := parseDate("2026-03-01", "2006-01-02T15:04:05", "2006-01-02")
	require.NotNil(t, got)
	assert.Equal(t, time.March, got.Month())
}
