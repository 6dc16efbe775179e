package search

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/answer-engine/internal/metrics"
	"github.com/sells-group/answer-engine/internal/model"
)

// Orchestrator issues one concurrent call per configured provider,
// each with its own deadline, and waits for all of them to settle.
// Provider failures are absorbed into failed ProviderResponses; the
// orchestrator itself never fails.
type Orchestrator struct {
	providers  []Provider
	limits     map[string]*Limits
	timeout    time.Duration
	maxResults int
	recorder   *metrics.Recorder
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithProviderTimeout sets the per-provider deadline.
func WithProviderTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxResults caps the results requested from each provider.
func WithMaxResults(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxResults = n
		}
	}
}

// WithLimits attaches shared admission state keyed by provider name.
func WithLimits(limits map[string]*Limits) OrchestratorOption {
	return func(o *Orchestrator) { o.limits = limits }
}

// WithRecorder attaches the metrics recorder.
func WithRecorder(r *metrics.Recorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator creates an Orchestrator over the given providers.
func NewOrchestrator(providers []Provider, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		providers:  providers,
		timeout:    15 * time.Second,
		maxResults: 10,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Search queries every provider concurrently and returns one settled
// response per provider, in configuration order regardless of
// completion order. It never short-circuits on first success: slower
// providers contribute result diversity.
func (o *Orchestrator) Search(ctx context.Context, query string) []model.ProviderResponse {
	responses := make([]model.ProviderResponse, len(o.providers))

	g, gCtx := errgroup.WithContext(ctx)
	for i, p := range o.providers {
		i, p := i, p
		g.Go(func() error {
			responses[i] = o.callProvider(gCtx, p, query)
			return nil
		})
	}
	// Goroutines always return nil; Wait is purely a settle barrier.
	_ = g.Wait()

	return responses
}

func (o *Orchestrator) callProvider(ctx context.Context, p Provider, query string) model.ProviderResponse {
	start := time.Now()

	if !o.limits[p.Name()].Admit() {
		zap.L().Warn("provider call over budget, skipping",
			zap.String("provider", p.Name()),
		)
		return o.settle(p.Name(), nil, start, "rate limit budget exhausted")
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	results, err := p.Search(callCtx, query, o.maxResults)
	if err != nil {
		zap.L().Warn("provider search failed",
			zap.String("provider", p.Name()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return o.settle(p.Name(), nil, start, err.Error())
	}

	zap.L().Debug("provider search complete",
		zap.String("provider", p.Name()),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
	return o.settle(p.Name(), results, start, "")
}

// settle builds the final ProviderResponse and records its metric.
func (o *Orchestrator) settle(name string, results []model.SearchResult, start time.Time, errMsg string) model.ProviderResponse {
	resp := model.ProviderResponse{
		Provider:     name,
		Results:      results,
		TotalResults: len(results),
		Duration:     time.Since(start),
		Success:      errMsg == "",
		Err:          errMsg,
	}

	if o.recorder != nil {
		o.recorder.Record(metrics.Metric{
			Operation: "search." + name,
			Duration:  resp.Duration,
			Timestamp: start,
			Success:   resp.Success,
			Fields:    map[string]int{"results": resp.TotalResults},
			Detail:    errMsg,
		})
	}
	return resp
}

// Merge flattens settled responses into the successful results, in
// configuration order. Failed providers contribute nothing.
func Merge(responses []model.ProviderResponse) []model.SearchResult {
	var merged []model.SearchResult
	for _, r := range responses {
		if !r.Success {
			continue
		}
		merged = append(merged, r.Results...)
	}
	return merged
}
