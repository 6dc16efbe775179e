// Package search fans a query out to every configured web-search
// provider concurrently and collects their settled responses for the
// merge chain.
package search

import (
	"context"
	"time"

	"github.com/sells-group/answer-engine/internal/fuse"
	"github.com/sells-group/answer-engine/internal/model"
	"github.com/sells-group/answer-engine/internal/resilience"
	"github.com/sells-group/answer-engine/pkg/brave"
	"github.com/sells-group/answer-engine/pkg/serper"
	"github.com/sells-group/answer-engine/pkg/tavily"
)

// Provider is a single external search source. Implementations return
// results already normalized to the canonical schema.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error)
}

// retryPolicy gives each provider call one retry on transient failures;
// anything beyond that is absorbed by the orchestrator.
var retryPolicy = resilience.Policy{MaxAttempts: 2, BaseBackoff: 250 * time.Millisecond}

// braveProvider adapts the Brave client.
type braveProvider struct {
	client brave.Client
}

// NewBraveProvider wraps a Brave client as a Provider.
func NewBraveProvider(client brave.Client) Provider {
	return &braveProvider{client: client}
}

func (p *braveProvider) Name() string { return "brave" }

func (p *braveProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := resilience.Retry(ctx, retryPolicy, "brave.search", func(ctx context.Context) (*brave.WebSearchResponse, error) {
		return p.client.WebSearch(ctx, query, maxResults)
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Web.Results))
	for i, r := range resp.Web.Results {
		results = append(results, fuse.Normalize(fuse.RawResult{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Description,
			PublishedAt: parseDate(r.PageAge, "2006-01-02T15:04:05", "2006-01-02"),
			ImageURL:    r.Thumbnail.Src,
		}, i, p.Name()))
	}
	return results, nil
}

// serperProvider adapts the Serper client.
type serperProvider struct {
	client serper.Client
}

// NewSerperProvider wraps a Serper client as a Provider.
func NewSerperProvider(client serper.Client) Provider {
	return &serperProvider{client: client}
}

func (p *serperProvider) Name() string { return "serper" }

func (p *serperProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := resilience.Retry(ctx, retryPolicy, "serper.search", func(ctx context.Context) (*serper.SearchResponse, error) {
		return p.client.Search(ctx, serper.SearchRequest{Query: query, NumResults: maxResults})
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Organic))
	for i, r := range resp.Organic {
		results = append(results, fuse.Normalize(fuse.RawResult{
			Title:       r.Title,
			URL:         r.Link,
			Snippet:     r.Snippet,
			PublishedAt: parseDate(r.Date, "Jan 2, 2006", "2006-01-02"),
			ImageURL:    r.ImageURL,
		}, i, p.Name()))
	}
	return results, nil
}

// tavilyProvider adapts the Tavily client. Tavily supplies a native
// relevance score in [0,1], which is rescaled to [0,100].
type tavilyProvider struct {
	client tavily.Client
}

// NewTavilyProvider wraps a Tavily client as a Provider.
func NewTavilyProvider(client tavily.Client) Provider {
	return &tavilyProvider{client: client}
}

func (p *tavilyProvider) Name() string { return "tavily" }

func (p *tavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchResult, error) {
	resp, err := resilience.Retry(ctx, retryPolicy, "tavily.search", func(ctx context.Context) (*tavily.SearchResponse, error) {
		return p.client.Search(ctx, tavily.SearchRequest{Query: query, MaxResults: maxResults})
	})
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(resp.Results))
	for i, r := range resp.Results {
		score := r.Score * 100
		results = append(results, fuse.Normalize(fuse.RawResult{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Content,
			Score:       &score,
			PublishedAt: parseDate(r.PublishedDate, "2006-01-02", time.RFC3339),
		}, i, p.Name()))
	}
	return results, nil
}

// parseDate tries each layout in order; nil when none match.
func parseDate(s string, layouts ...string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
