// Package pipeline runs the full answer flow: provider fan-out, merge
// chain, intent classification, prompt construction, LLM synthesis,
// validation, and response assembly.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/answer-engine/internal/answer"
	"github.com/sells-group/answer-engine/internal/fuse"
	"github.com/sells-group/answer-engine/internal/intent"
	"github.com/sells-group/answer-engine/internal/metrics"
	"github.com/sells-group/answer-engine/internal/model"
	"github.com/sells-group/answer-engine/internal/prompt"
	"github.com/sells-group/answer-engine/internal/search"
)

// ErrInvalidQuery rejects malformed input; it is the only failure mode
// that surfaces to the caller as an error.
var ErrInvalidQuery = eris.New("pipeline: query must be between 1 and 500 characters")

const (
	maxQueryLength  = 500
	maxSources      = 6
	maxContextTurns = 3
)

// State is a request's position in the answer flow.
type State string

const (
	StateReceived          State = "received"
	StateFannedOut         State = "fanned_out"
	StateMerged            State = "merged"
	StateScoredAndAssessed State = "scored_and_assessed"
	StateIntentClassified  State = "intent_classified"
	StatePrompted          State = "prompted"
	StateLLMAwaited        State = "llm_awaited"
	StateAnswerValidated   State = "answer_validated"
	StateComplete          State = "complete"
	StateError             State = "error"
)

// Searcher is the fan-out surface the pipeline consumes.
type Searcher interface {
	Search(ctx context.Context, query string) []model.ProviderResponse
}

// Generator is the synthesis surface the pipeline consumes.
type Generator interface {
	Generate(ctx context.Context, pc prompt.Context) answer.Synthesis
}

// Pipeline wires the stages together. All per-request state lives on
// the stack of Run; the recorder is the only shared collaborator.
type Pipeline struct {
	searcher   Searcher
	scorer     *fuse.Scorer
	generator  Generator
	recorder   *metrics.Recorder
	complexity prompt.Complexity
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder attaches the metrics recorder.
func WithRecorder(r *metrics.Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithComplexity sets the response complexity level.
func WithComplexity(c prompt.Complexity) Option {
	return func(p *Pipeline) {
		if c != "" {
			p.complexity = c
		}
	}
}

// New creates a Pipeline.
func New(searcher Searcher, scorer *fuse.Scorer, generator Generator, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher:   searcher,
		scorer:     scorer,
		generator:  generator,
		complexity: prompt.ComplexityBalanced,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run executes the answer flow for one request. Provider and LLM
// failures degrade the response; only malformed input returns an error.
func (p *Pipeline) Run(ctx context.Context, req model.AnswerRequest) (*model.AnswerResponse, error) {
	start := time.Now()
	trace := newTrace()
	trace.mark(StateReceived)

	query := strings.TrimSpace(req.Query)
	if query == "" || len(query) > maxQueryLength {
		trace.mark(StateError)
		p.record(start, false, nil, trace)
		return nil, ErrInvalidQuery
	}

	responses := p.searcher.Search(ctx, query)
	trace.mark(StateFannedOut)

	succeeded := 0
	for _, r := range responses {
		if r.Success {
			succeeded++
		}
	}

	merged := fuse.Dedupe(search.Merge(responses))
	trace.mark(StateMerged)

	scored := p.scorer.Score(merged)
	assessment := fuse.Assess(scored)
	trace.mark(StateScoredAndAssessed)

	queryIntent := req.Intent
	if queryIntent == "" {
		queryIntent = intent.Classify(query)
	}
	trace.mark(StateIntentClassified)

	// The prompt, validation thresholds, fallback template, and the
	// response's sources field all work from the same trimmed slice,
	// so citation numbers always resolve to a returned source.
	sources := scored
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}

	history := req.Context
	if len(history) > maxContextTurns {
		history = history[len(history)-maxContextTurns:]
	}
	pc := prompt.Context{
		Query:           query,
		Results:         sources,
		Intent:          queryIntent,
		PreviousQueries: history,
		Complexity:      p.complexity,
	}
	trace.mark(StatePrompted)

	trace.mark(StateLLMAwaited)
	synthesis := p.generator.Generate(ctx, pc)
	trace.mark(StateAnswerValidated)

	resp := &model.AnswerResponse{
		Answer:            synthesis.Answer,
		Sources:           sources,
		FollowUpQuestions: answer.FollowUps(query, queryIntent, scored),
		Confidence:        assessment.Confidence,
		ProcessingTimeMs:  time.Since(start).Milliseconds(),
		QueryIntent:       queryIntent,
	}
	trace.mark(StateComplete)

	zap.L().Info("answer complete",
		zap.String("intent", string(queryIntent)),
		zap.String("tier", synthesis.Tier),
		zap.String("quality", string(assessment.Tier)),
		zap.Int("providers_ok", succeeded),
		zap.Int("sources", len(sources)),
		zap.Float64("confidence", assessment.Confidence),
		zap.Duration("duration", time.Since(start)),
		zap.Strings("quality_issues", assessment.Issues),
	)

	p.record(start, true, map[string]int{
		"providers_ok": succeeded,
		"merged":       len(merged),
		"sources":      len(sources),
	}, trace)

	return resp, nil
}

func (p *Pipeline) record(start time.Time, success bool, fields map[string]int, tr *trace) {
	if p.recorder == nil {
		return
	}
	p.recorder.Record(metrics.Metric{
		Operation: "pipeline.run",
		Duration:  time.Since(start),
		Timestamp: start,
		Success:   success,
		Fields:    fields,
		Detail:    tr.String(),
	})
}

// trace accumulates the states a request passed through.
type trace struct {
	states []State
}

func newTrace() *trace {
	return &trace{states: make([]State, 0, 10)}
}

func (t *trace) mark(s State) {
	t.states = append(t.states, s)
}

func (t *trace) String() string {
	parts := make([]string, len(t.states))
	for i, s := range t.states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ",")
}
