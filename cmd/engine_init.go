package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/answer-engine/internal/answer"
	"github.com/sells-group/answer-engine/internal/config"
	"github.com/sells-group/answer-engine/internal/fuse"
	"github.com/sells-group/answer-engine/internal/metrics"
	"github.com/sells-group/answer-engine/internal/pipeline"
	"github.com/sells-group/answer-engine/internal/prompt"
	"github.com/sells-group/answer-engine/internal/search"
	anthropicpkg "github.com/sells-group/answer-engine/pkg/anthropic"
	"github.com/sells-group/answer-engine/pkg/brave"
	"github.com/sells-group/answer-engine/pkg/serper"
	"github.com/sells-group/answer-engine/pkg/tavily"
)

// engineEnv holds the initialized clients, the pipeline, and the
// metrics recorder needed by the ask/serve commands.
type engineEnv struct {
	Pipeline *pipeline.Pipeline
	Recorder *metrics.Recorder
}

// Close flushes pending metrics.
func (e *engineEnv) Close() {
	if e.Recorder != nil {
		e.Recorder.Close()
	}
}

// initEngine sets up the provider clients, rate limits, scorer, and
// synthesizer, and builds the Pipeline. Callers should defer env.Close().
func initEngine(mode string) (*engineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	recorder := metrics.NewRecorder(metrics.NewRing(cfg.Metrics.RingSize))

	var providers []search.Provider
	limits := make(map[string]*search.Limits)

	addProvider := func(name string, pc config.ProviderConfig, p search.Provider) {
		if !pc.Enabled || pc.Key == "" {
			zap.L().Debug("search provider disabled", zap.String("provider", name))
			return
		}
		providers = append(providers, p)
		limits[name] = &search.Limits{
			Budget:  search.NewBudget(pc.CallsPerMinute, pc.CallsPerMonth),
			Limiter: rate.NewLimiter(rate.Limit(pc.RatePerSecond), pc.Burst),
		}
		zap.L().Info("search provider enabled", zap.String("provider", name))
	}

	addProvider("brave", cfg.Brave,
		search.NewBraveProvider(brave.NewClient(cfg.Brave.Key, brave.WithBaseURL(cfg.Brave.BaseURL))))
	addProvider("serper", cfg.Serper,
		search.NewSerperProvider(serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))))
	addProvider("tavily", cfg.Tavily,
		search.NewTavilyProvider(tavily.NewClient(cfg.Tavily.Key, tavily.WithBaseURL(cfg.Tavily.BaseURL))))

	orchestrator := search.NewOrchestrator(providers,
		search.WithProviderTimeout(cfg.Search.ProviderTimeout()),
		search.WithMaxResults(cfg.Search.MaxResults),
		search.WithLimits(limits),
		search.WithRecorder(recorder),
	)

	scorerOpts := []fuse.ScorerOption{
		fuse.WithWeights(cfg.Scoring.Weights),
		fuse.WithTopN(cfg.Scoring.TopN),
	}
	if cfg.Scoring.AuthorityFile != "" {
		table, err := fuse.LoadAuthorityTable(cfg.Scoring.AuthorityFile)
		if err != nil {
			return nil, eris.Wrap(err, "load authority table")
		}
		scorerOpts = append(scorerOpts, fuse.WithAuthorityTable(table))
	}
	scorer := fuse.NewScorer(scorerOpts...)

	synthesizer := answer.NewSynthesizer(
		anthropicpkg.NewClient(cfg.Anthropic.Key),
		answer.Config{
			Model:       cfg.Anthropic.Model,
			MaxTokens:   int64(cfg.Anthropic.MaxTokens),
			Temperature: &cfg.Anthropic.Temperature,
			Timeout:     cfg.Anthropic.Timeout(),
			MinLength:   cfg.Answer.MinLength,
			MinSections: cfg.Answer.MinSections,
		},
	)

	p := pipeline.New(orchestrator, scorer, synthesizer,
		pipeline.WithRecorder(recorder),
		pipeline.WithComplexity(prompt.Complexity(cfg.Answer.Complexity)),
	)

	return &engineEnv{Pipeline: p, Recorder: recorder}, nil
}
